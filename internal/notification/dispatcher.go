package notification

import (
	"context"
	"fmt"
	"log"
	"time"

	"psymatch/internal/domain"
)

const (
	deliveryAttempts = 3
	deliveryBackoff  = 2 * time.Second
)

// EmailSender enqueues an email for out-of-band delivery.
type EmailSender interface {
	Send(ctx context.Context, to []string, subject, body string) error
}

// ChatSender pushes a message to a Telegram chat.
type ChatSender interface {
	SendMessage(ctx context.Context, chatID int64, text string) error
	SendRequestOffer(ctx context.Context, chatID int64, requestID int64, text string) error
}

type UserReader interface {
	GetByID(ctx context.Context, id int64) (*domain.User, error)
}

// Dispatcher fans one event out to the in-app feed, email queue and Telegram.
// Delivery is fire-and-forget with bounded retries; a failing channel is
// logged and never propagates to the originating request.
type Dispatcher struct {
	repo  *Repository
	email EmailSender
	chat  ChatSender
	users UserReader
}

func NewDispatcher(repo *Repository, email EmailSender, chat ChatSender, users UserReader) *Dispatcher {
	return &Dispatcher{repo: repo, email: email, chat: chat, users: users}
}

func (d *Dispatcher) deliver(what string, fn func(ctx context.Context) error) {
	go func() {
		ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
		defer cancel()

		var err error
		backoff := deliveryBackoff
		for attempt := 1; attempt <= deliveryAttempts; attempt++ {
			if err = fn(ctx); err == nil {
				return
			}
			if attempt < deliveryAttempts {
				time.Sleep(backoff)
				backoff *= 2
			}
		}
		log.Printf("notification: %s failed after %d attempts: %v", what, deliveryAttempts, err)
	}()
}

// notifyUser writes the in-app record synchronously (cheap, local DB) and
// pushes email/telegram asynchronously over every linked channel.
func (d *Dispatcher) notifyUser(ctx context.Context, userID int64, t Type, title, message string, data map[string]any) {
	n := &Notification{UserID: userID, Type: t, Title: title, Message: message}
	if err := d.repo.Create(ctx, n, data); err != nil {
		log.Printf("notification: create in-app record user_id=%d: %v", userID, err)
	}

	user, err := d.users.GetByID(ctx, userID)
	if err != nil {
		log.Printf("notification: load user_id=%d: %v", userID, err)
		return
	}

	if d.email != nil && user.Email != nil {
		to := []string{*user.Email}
		d.deliver(string(t)+" email", func(ctx context.Context) error {
			return d.email.Send(ctx, to, title, message)
		})
	}
	if d.chat != nil && user.TelegramID != nil {
		chatID := *user.TelegramID
		d.deliver(string(t)+" telegram", func(ctx context.Context) error {
			return d.chat.SendMessage(ctx, chatID, title+"\n\n"+message)
		})
	}
}

func (d *Dispatcher) NotifyApplicationApproved(ctx context.Context, userID int64) {
	d.notifyUser(ctx, userID, TypeApplicationApproved,
		"Application approved",
		"Your psychologist application has been approved. Your profile is now visible to clients.",
		nil)
}

func (d *Dispatcher) NotifyApplicationRejected(ctx context.Context, userID int64, reason string) {
	msg := "Your psychologist application has been rejected."
	if reason != "" {
		msg = msg + " Reason: " + reason
	}
	d.notifyUser(ctx, userID, TypeApplicationRejected, "Application rejected", msg, nil)
}

func (d *Dispatcher) NotifyDocumentsRequested(ctx context.Context, userID int64) {
	d.notifyUser(ctx, userID, TypeDocumentsRequested,
		"Documents requested",
		"The review team asks you to attach supporting documents to your application.",
		nil)
}

// BroadcastRequest offers a new consultation request to every eligible
// psychologist's Telegram chat with an accept affordance keyed by request id.
func (d *Dispatcher) BroadcastRequest(ctx context.Context, chatIDs []int64, req *domain.ConsultationRequest) {
	if d.chat == nil {
		return
	}
	text := requestOfferText(req)
	for _, chatID := range chatIDs {
		chatID := chatID
		d.deliver(fmt.Sprintf("request %d offer chat %d", req.ID, chatID), func(ctx context.Context) error {
			return d.chat.SendRequestOffer(ctx, chatID, req.ID, text)
		})
	}
}

// NotifyRequestClaimed informs the requesting client that a psychologist took
// their request. Anonymous requests only have a Telegram identity once the
// client token has been reconciled.
func (d *Dispatcher) NotifyRequestClaimed(ctx context.Context, req *domain.ConsultationRequest, psychologistName string) {
	msg := fmt.Sprintf("Psychologist %s has taken your request and will contact you shortly.", psychologistName)
	if req.ClientUserID != nil {
		d.notifyUser(ctx, *req.ClientUserID, TypeRequestClaimed, "Request taken", msg,
			map[string]any{"request_id": req.ID})
		return
	}
	if d.chat != nil && req.TelegramID != nil {
		chatID := *req.TelegramID
		d.deliver(fmt.Sprintf("request %d claimed notice", req.ID), func(ctx context.Context) error {
			return d.chat.SendMessage(ctx, chatID, msg)
		})
	}
}

func (d *Dispatcher) NotifyRequestTaken(ctx context.Context, psychologistUserID int64, requestID int64) {
	d.notifyUser(ctx, psychologistUserID, TypeRequestTaken,
		"Request assigned",
		"The consultation request is now assigned to you. Please contact the client.",
		map[string]any{"request_id": requestID})
}

func (d *Dispatcher) NotifySessionScheduled(ctx context.Context, clientUserID, psychologistUserID int64, start time.Time) {
	when := start.Format("02.01.2006 15:04")
	d.notifyUser(ctx, clientUserID, TypeSessionScheduled,
		"Session scheduled",
		"Your session is scheduled for "+when+".",
		nil)
	d.notifyUser(ctx, psychologistUserID, TypeSessionScheduled,
		"New session",
		"A client booked a session with you for "+when+".",
		nil)
}

// NotifySessionCancelled tells the psychologist their slot freed up. The
// cancelling client needs no notice of their own action.
func (d *Dispatcher) NotifySessionCancelled(ctx context.Context, psychologistUserID int64, start time.Time) {
	d.notifyUser(ctx, psychologistUserID, TypeSessionCancelled,
		"Session cancelled",
		"The session scheduled for "+start.Format("02.01.2006 15:04")+" was cancelled by the client.",
		nil)
}

func (d *Dispatcher) NotifyReviewInvitation(ctx context.Context, req *domain.ConsultationRequest) {
	msg := "Your consultation is complete. Please rate your psychologist from 1 to 5."
	if req.ClientUserID != nil {
		d.notifyUser(ctx, *req.ClientUserID, TypeReviewInvitation, "Leave a review", msg,
			map[string]any{"request_id": req.ID})
		return
	}
	if d.chat != nil && req.TelegramID != nil {
		chatID := *req.TelegramID
		d.deliver(fmt.Sprintf("request %d review invitation", req.ID), func(ctx context.Context) error {
			return d.chat.SendMessage(ctx, chatID, msg)
		})
	}
}

func requestOfferText(req *domain.ConsultationRequest) string {
	text := "New consultation request"
	if req.Topic != "" {
		text += "\nTopic: " + req.Topic
	}
	if req.Comment != "" {
		text += "\nComment: " + req.Comment
	}
	if req.PreferredGender != "" {
		text += "\nPreferred gender: " + req.PreferredGender
	}
	if req.PreferredMinAge > 0 || req.PreferredMaxAge > 0 {
		text += fmt.Sprintf("\nPreferred age: %d-%d", req.PreferredMinAge, req.PreferredMaxAge)
	}
	return text
}
