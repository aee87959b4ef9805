package notification

import (
	"context"
	"log/slog"
	"sync"
	"time"

	"github.com/securepass-ai/securepass-backend-go/internal/domain/message"
	"github.com/securepass-ai/securepass-backend-go/internal/pkg/email"
)

// sendTimeout bounds one delivery, retries included.
const sendTimeout = time.Minute

// Config holds notification service configuration
type Config struct {
	WorkerCount int // default: 2
	QueueSize   int // default: 100
}

// Service sends reply emails from a pool of background workers.
type Service struct {
	mailer email.EmailService
	config Config

	queue    chan message.ReplyEmail
	wg       sync.WaitGroup
	stopOnce sync.Once
	stopCh   chan struct{}
}

// NewNotificationService creates a new notification service with background workers
func NewNotificationService(mailer email.EmailService, cfg Config) *Service {
	if cfg.WorkerCount == 0 {
		cfg.WorkerCount = 2
	}
	if cfg.QueueSize == 0 {
		cfg.QueueSize = 100
	}

	s := &Service{
		mailer: mailer,
		config: cfg,
		queue:  make(chan message.ReplyEmail, cfg.QueueSize),
		stopCh: make(chan struct{}),
	}

	for i := 0; i < cfg.WorkerCount; i++ {
		s.wg.Add(1)
		go s.worker(i)
	}

	slog.Info("Notification service started", "workers", cfg.WorkerCount, "queue_size", cfg.QueueSize)
	return s
}

func (s *Service) worker(id int) {
	defer s.wg.Done()

	for {
		select {
		case mail := <-s.queue:
			s.send(id, mail)
		case <-s.stopCh:
			// drain what is already queued
			for {
				select {
				case mail := <-s.queue:
					s.send(id, mail)
				default:
					return
				}
			}
		}
	}
}

func (s *Service) send(workerID int, mail message.ReplyEmail) {
	ctx, cancel := context.WithTimeout(context.Background(), sendTimeout)
	defer cancel()

	if err := s.mailer.SendMessageReply(ctx, mail.To, mail.UserName, mail.OriginalMessage, mail.Reply); err != nil {
		slog.Error("Failed to send reply email", "worker", workerID, "to", mail.To, "error", err)
	}
}

// QueueReplyEmail implements message.ReplyNotifier. When the queue is full the
// email is sent on the caller's goroutine.
func (s *Service) QueueReplyEmail(ctx context.Context, mail message.ReplyEmail) error {
	select {
	case s.queue <- mail:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	default:
		return s.mailer.SendMessageReply(ctx, mail.To, mail.UserName, mail.OriginalMessage, mail.Reply)
	}
}

// Stop gracefully stops the notification service
func (s *Service) Stop() {
	s.stopOnce.Do(func() {
		close(s.stopCh)
		s.wg.Wait()
		slog.Info("Notification service stopped")
	})
}
