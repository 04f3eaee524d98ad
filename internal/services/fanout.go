package services

import (
	"context"
	"log/slog"
	"time"

	"github.com/google/uuid"

	"podpulse/internal/domain"
)

const fanoutTimeout = 15 * time.Second

type changeNotifier struct {
	resolver         *RecipientResolver
	profileRepo      domain.ProfileRepository
	notificationRepo domain.NotificationRepository
	tokenRepo        domain.PushTokenRepository
	broker           domain.Broker
	pusher           domain.PushDeliverer
	mailer           domain.Mailer
	renderer         domain.EmailTemplateRenderer
	logger           *slog.Logger
}

// NewChangeNotifier wires the fan-out pipeline: resolve recipients,
// record ledger rows, publish inbox invalidations, hand push messages to
// the deliverer, and mirror cancellations to email. Mailer and renderer
// may be nil to disable the email mirror.
func NewChangeNotifier(
	resolver *RecipientResolver,
	profileRepo domain.ProfileRepository,
	notificationRepo domain.NotificationRepository,
	tokenRepo domain.PushTokenRepository,
	broker domain.Broker,
	pusher domain.PushDeliverer,
	mailer domain.Mailer,
	renderer domain.EmailTemplateRenderer,
	logger *slog.Logger,
) domain.ChangeNotifier {
	return &changeNotifier{
		resolver:         resolver,
		profileRepo:      profileRepo,
		notificationRepo: notificationRepo,
		tokenRepo:        tokenRepo,
		broker:           broker,
		pusher:           pusher,
		mailer:           mailer,
		renderer:         renderer,
		logger:           logger,
	}
}

// Notify fans the change out to interested pod members. The mutation
// has already committed, so the caller's deadline no longer applies:
// fan-out detaches from caller cancellation and runs under its own
// timeout. Every failure is logged and swallowed.
func (n *changeNotifier) Notify(ctx context.Context, change domain.Change) {
	ctx, cancel := context.WithTimeout(context.WithoutCancel(ctx), fanoutTimeout)
	defer cancel()

	log := n.logger.With(
		"change_type", string(change.Type),
		"event_id", change.Event.ID,
		"actor_id", change.ActorID,
	)

	recipients, err := n.resolver.Resolve(ctx, change)
	if err != nil {
		log.Error("fan-out aborted: resolve recipients", "error", err)
		return
	}
	if len(recipients) == 0 {
		log.Debug("fan-out skipped: no recipients")
		return
	}

	actorProfile, err := n.profileRepo.GetByID(ctx, change.ActorID)
	if err != nil {
		log.Warn("actor profile lookup failed, using fallback name", "error", err)
		actorProfile = nil
	}
	tmpl := buildTemplate(change, actorDisplayName(actorProfile, change.ActorID))

	now := time.Now()
	entries := make([]*domain.NotificationEntry, 0, len(recipients))
	for _, recipientID := range recipients {
		entries = append(entries, &domain.NotificationEntry{
			ID:          uuid.NewString(),
			RecipientID: recipientID,
			ActorID:     change.ActorID,
			PodID:       change.Event.PodID,
			EventID:     change.Event.ID,
			Type:        change.Type,
			Title:       tmpl.Title,
			Body:        tmpl.Body,
			Data:        tmpl.Data,
			CreatedAt:   now,
		})
	}

	inserted, err := n.notificationRepo.CreateBatch(ctx, entries)
	if err != nil {
		// All-or-nothing: nothing was recorded, so nothing is pushed.
		log.Error("fan-out failed: ledger insert", "recipients", len(recipients), "error", err)
		return
	}
	log.Info("notifications recorded", "inserted", inserted)

	for _, recipientID := range recipients {
		if err := n.broker.Publish(ctx, domain.InboxTopic(recipientID)); err != nil {
			log.Warn("inbox publish failed", "recipient_id", recipientID, "error", err)
		}
	}

	n.dispatchPush(ctx, log, change, recipients, tmpl)

	if change.Type == domain.ChangeEventCancelled {
		n.mirrorCancellationEmail(ctx, log, change, recipients, actorProfile)
	}
}

func (n *changeNotifier) dispatchPush(ctx context.Context, log *slog.Logger, change domain.Change, recipients []string, tmpl notificationTemplate) {
	tokens, err := n.tokenRepo.ListByUserIDs(ctx, recipients)
	if err != nil {
		log.Warn("push skipped: token lookup failed", "error", err)
		return
	}
	if len(tokens) == 0 {
		return
	}

	messages := make([]domain.PushMessage, 0, len(tokens))
	for _, token := range tokens {
		messages = append(messages, domain.PushMessage{
			To:    token.Token,
			Title: tmpl.Title,
			Body:  tmpl.Body,
			Sound: "default",
			Data: map[string]string{
				"event_id": change.Event.ID,
				"type":     string(change.Type),
			},
		})
	}
	if err := n.pusher.Deliver(messages); err != nil {
		log.Warn("push enqueue failed", "messages", len(messages), "error", err)
	}
}

func (n *changeNotifier) mirrorCancellationEmail(ctx context.Context, log *slog.Logger, change domain.Change, recipients []string, actorProfile *domain.Profile) {
	if n.mailer == nil || n.renderer == nil {
		return
	}
	profiles, err := n.profileRepo.ListByIDs(ctx, recipients)
	if err != nil {
		log.Warn("cancellation email skipped: profile lookup failed", "error", err)
		return
	}

	reason := ""
	if p, ok := change.Payload.(domain.CancelPayload); ok && p.CancelReason != nil {
		reason = *p.CancelReason
	}
	data := domain.CancellationEmailData{
		EventTitle: change.Event.Title,
		EventTime:  formatEventWindow(change.Event),
		Location:   locationLabel(change.Event),
		ActorName:  actorDisplayName(actorProfile, change.ActorID),
		Reason:     reason,
	}
	subject, html, text, err := n.renderer.Render("event_canceled", data)
	if err != nil {
		log.Warn("cancellation email skipped: template render failed", "error", err)
		return
	}

	for _, profile := range profiles {
		if profile.Email == nil || *profile.Email == "" {
			continue
		}
		if err := n.mailer.Send(*profile.Email, subject, html, text); err != nil {
			log.Warn("cancellation email failed", "recipient_id", profile.ID, "error", err)
		}
	}
}
