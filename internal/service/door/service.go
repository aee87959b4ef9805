package door

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"

	"github.com/securepass-ai/securepass-backend-go/internal/domain/company"
	"github.com/securepass-ai/securepass-backend-go/internal/domain/door"
	"github.com/securepass-ai/securepass-backend-go/internal/domain/user"
	"github.com/securepass-ai/securepass-backend-go/internal/pkg/database"
	"github.com/securepass-ai/securepass-backend-go/internal/pkg/storage"
	"github.com/securepass-ai/securepass-backend-go/internal/pkg/validator"
	"github.com/securepass-ai/securepass-backend-go/internal/service/file"
)

type DoorServiceImpl struct {
	tx          database.Transactor
	doorRepo    door.DoorRepository
	companyRepo company.CompanyRepository
	fileService file.FileService
}

func NewDoorService(tx database.Transactor, doorRepo door.DoorRepository, companyRepo company.CompanyRepository, fileService file.FileService) door.DoorService {
	return &DoorServiceImpl{
		tx:          tx,
		doorRepo:    doorRepo,
		companyRepo: companyRepo,
		fileService: fileService,
	}
}

func (s *DoorServiceImpl) getScoped(ctx context.Context, principal user.Principal, id string) (door.Door, error) {
	d, err := s.doorRepo.GetByID(ctx, id)
	if err != nil {
		return door.Door{}, err
	}
	if !principal.CanAccessCompany(d.CompanyID) {
		return door.Door{}, door.ErrDoorNotFound
	}
	return d, nil
}

// Create implements door.DoorService. The location defaults to the company name.
func (s *DoorServiceImpl) Create(ctx context.Context, principal user.Principal, req door.CreateDoorRequest) (door.DoorResponse, error) {
	if err := principal.Require(user.PermissionDoorManage); err != nil {
		return door.DoorResponse{}, err
	}
	companyID := principal.Company()
	if companyID == "" {
		return door.DoorResponse{}, user.ErrCompanyIDRequired
	}
	if err := req.Validate(); err != nil {
		return door.DoorResponse{}, err
	}

	hasImage := req.QRImage != nil && strings.TrimSpace(*req.QRImage) != ""
	if hasImage {
		if _, err := storage.DecodePNG(*req.QRImage); err != nil {
			return door.DoorResponse{}, door.ErrInvalidQRImage
		}
	}

	var created door.Door
	err := s.tx.WithinTransaction(ctx, func(ctx context.Context) error {
		location := ""
		if req.Location != nil {
			location = strings.TrimSpace(*req.Location)
		}
		if location == "" {
			c, err := s.companyRepo.GetByID(ctx, companyID)
			if err != nil {
				return fmt.Errorf("failed to get company: %w", err)
			}
			location = c.Name
		}

		qrData := req.QRData
		var err error
		created, err = s.doorRepo.Create(ctx, door.Door{
			CompanyID: companyID,
			DoorCode:  strings.TrimSpace(req.DoorCode),
			RoomName:  strings.TrimSpace(req.RoomName),
			Location:  location,
			Status:    door.StatusActive,
			QRData:    &qrData,
		})
		if err != nil {
			return err
		}

		if hasImage {
			url, err := s.fileService.SaveDoorQR(ctx, companyID, created.ID, *req.QRImage)
			if err != nil {
				if errors.Is(err, storage.ErrInvalidImage) {
					return door.ErrInvalidQRImage
				}
				return fmt.Errorf("failed to store qr image: %w", err)
			}
			if err := s.doorRepo.SetQRImageURL(ctx, created.ID, url); err != nil {
				return fmt.Errorf("failed to save qr image url: %w", err)
			}
			created.QRImageURL = &url
		}
		return nil
	})
	if err != nil {
		return door.DoorResponse{}, err
	}
	slog.Info("Door created", "door_id", created.ID, "company_id", companyID, "door_code", created.DoorCode)

	return created.ToResponse(), nil
}

// List implements door.DoorService.
func (s *DoorServiceImpl) List(ctx context.Context, principal user.Principal, filter door.DoorFilter) (door.ListDoorResponse, error) {
	if err := principal.Require(user.PermissionDoorView); err != nil {
		return door.ListDoorResponse{}, err
	}
	if err := filter.Validate(); err != nil {
		return door.ListDoorResponse{}, err
	}
	filter.CompanyID = principal.ScopeFor()
	filter.Page, filter.Limit = validator.NormalizePage(filter.Page, filter.Limit)

	doors, total, err := s.doorRepo.List(ctx, filter)
	if err != nil {
		return door.ListDoorResponse{}, fmt.Errorf("failed to list doors: %w", err)
	}

	responses := make([]door.DoorResponse, 0, len(doors))
	for _, d := range doors {
		responses = append(responses, d.ToResponse())
	}

	return door.ListDoorResponse{
		TotalCount: total,
		Page:       filter.Page,
		Limit:      filter.Limit,
		TotalPages: validator.TotalPages(total, filter.Limit),
		Doors:      responses,
	}, nil
}

// Get implements door.DoorService.
func (s *DoorServiceImpl) Get(ctx context.Context, principal user.Principal, id string) (door.DoorResponse, error) {
	if err := principal.Require(user.PermissionDoorView); err != nil {
		return door.DoorResponse{}, err
	}
	d, err := s.getScoped(ctx, principal, id)
	if err != nil {
		return door.DoorResponse{}, err
	}
	return d.ToResponse(), nil
}

// Update implements door.DoorService.
func (s *DoorServiceImpl) Update(ctx context.Context, principal user.Principal, id string, req door.UpdateDoorRequest) (door.DoorResponse, error) {
	if err := principal.Require(user.PermissionDoorManage); err != nil {
		return door.DoorResponse{}, err
	}
	if err := req.Validate(); err != nil {
		return door.DoorResponse{}, err
	}
	if req.DoorCode == nil && req.RoomName == nil && req.Location == nil {
		return door.DoorResponse{}, door.ErrNoFieldsToUpdate
	}
	if _, err := s.getScoped(ctx, principal, id); err != nil {
		return door.DoorResponse{}, err
	}

	updated, err := s.doorRepo.Update(ctx, id, req)
	if err != nil {
		return door.DoorResponse{}, err
	}
	return updated.ToResponse(), nil
}

// UpdateStatus implements door.DoorService.
func (s *DoorServiceImpl) UpdateStatus(ctx context.Context, principal user.Principal, id string, req door.UpdateDoorStatusRequest) (door.DoorResponse, error) {
	if err := principal.Require(user.PermissionDoorManage); err != nil {
		return door.DoorResponse{}, err
	}
	if err := req.Validate(); err != nil {
		return door.DoorResponse{}, err
	}
	if _, err := s.getScoped(ctx, principal, id); err != nil {
		return door.DoorResponse{}, err
	}

	updated, err := s.doorRepo.UpdateStatus(ctx, id, door.Status(req.Status))
	if err != nil {
		return door.DoorResponse{}, err
	}
	slog.Info("Door status changed", "door_id", id, "status", req.Status, "changed_by", principal.SubjectID)
	return updated.ToResponse(), nil
}

// Delete implements door.DoorService. The door is retired: its ledger
// entries go, its history and requests stay.
func (s *DoorServiceImpl) Delete(ctx context.Context, principal user.Principal, id string) error {
	if err := principal.Require(user.PermissionDoorManage); err != nil {
		return err
	}
	d, err := s.getScoped(ctx, principal, id)
	if err != nil {
		return err
	}

	err = s.tx.WithinTransaction(ctx, func(ctx context.Context) error {
		return s.doorRepo.Delete(ctx, id)
	})
	if err != nil {
		return err
	}

	if d.QRImageURL != nil {
		if err := s.fileService.DeleteDoorQR(ctx, d.CompanyID, d.ID); err != nil {
			slog.Warn("Failed to delete door qr image", "door_id", id, "error", err)
		}
	}
	return nil
}
