package relay

import (
	"context"
	"time"

	"github.com/google/uuid"

	"github.com/ignite/signature-relay/internal/domain"
	"github.com/ignite/signature-relay/internal/pkg/logger"
	"github.com/ignite/signature-relay/internal/service/assignment"
	"github.com/ignite/signature-relay/internal/service/injection"
)

// Resolver maps a sender to its assignment. Implemented by
// assignment.Service.
type Resolver interface {
	Resolve(ctx context.Context, rawFrom string) (*assignment.Resolution, error)
	ActiveBanner(ctx context.Context, id string) (*domain.Banner, error)
}

// Tracker prepares banner HTML for tracking. Implemented by
// tracking.Service.
type Tracker interface {
	PrepareBanner(ctx context.Context, senderEmail, recipientEmail string, b *domain.Banner) string
}

// Forwarder delivers the finished message. Implemented by the sender
// adapters.
type Forwarder interface {
	Forward(ctx context.Context, e *domain.Email) (*domain.ForwardResult, error)
}

// Pipeline runs one normalized message through resolution, rotation,
// injection and forwarding.
type Pipeline struct {
	resolver  Resolver
	tracker   Tracker
	forwarder Forwarder
	templates *injection.TemplateService
	now       func() time.Time
}

// NewPipeline wires the injection pipeline.
func NewPipeline(resolver Resolver, tracker Tracker, forwarder Forwarder, templates *injection.TemplateService) *Pipeline {
	return &Pipeline{
		resolver:  resolver,
		tracker:   tracker,
		forwarder: forwarder,
		templates: templates,
		now:       time.Now,
	}
}

// Process injects content into the message and forwards it. Resolution
// misses and datastore hiccups degrade to forwarding the original content;
// only the forwarding step's failure is the pipeline's failure.
func (p *Pipeline) Process(ctx context.Context, e *domain.Email) (*domain.ForwardResult, error) {
	if e.MessageID == "" {
		e.MessageID = uuid.New().String()
	}

	res, err := p.resolver.Resolve(ctx, e.From)
	if err != nil {
		logger.Error("assignment resolution failed, forwarding unmodified", "error", err, "from", e.From)
		res = nil
	}

	if res != nil {
		sender := assignment.ExtractAddress(e.From)

		var bannerHTML string
		if id := injection.SelectBannerID(res.BannerIDs, p.now()); id != "" {
			b, err := p.resolver.ActiveBanner(ctx, id)
			if err != nil {
				logger.Error("banner fetch failed", "error", err, "banner_id", id)
			} else if b != nil {
				// One session per outbound message; attribution uses the
				// first recipient.
				recipient := assignment.ExtractAddress(e.To[0])
				bannerHTML = p.tracker.PrepareBanner(ctx, sender, recipient, b)
			}
		}

		var sigHTML string
		if res.Signature != nil {
			sigHTML = p.templates.Render(res.Signature.HTML, res.Profile.TemplateVars())
		}

		injection.Apply(e, sigHTML, bannerHTML)
	} else {
		// No assignment: still guarantee a non-empty body before forwarding.
		injection.Apply(e, "", "")
	}

	if e.Headers == nil {
		e.Headers = make(map[string]string)
	}
	for k, v := range MarkerHeaders() {
		e.Headers[k] = v
	}

	result, err := p.forwarder.Forward(ctx, e)
	if err != nil {
		return nil, err
	}
	logger.Info("message forwarded",
		"message_id", e.MessageID, "from", e.From,
		"recipient_count", len(e.To), "provider", result.Provider, "status", result.StatusCode)
	return result, nil
}
