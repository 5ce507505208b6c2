// Package textgen drafts ticket structure and customer-facing messages with
// the Anthropic Messages API. Every operation is optional enrichment: callers
// treat an empty result as "nothing generated".
package textgen

import (
	"context"

	"github.com/orris-inc/tracksync/internal/domain/customerrequest"
	vo "github.com/orris-inc/tracksync/internal/domain/customerrequest/valueobjects"
	"github.com/orris-inc/tracksync/internal/shared/config"
	"github.com/orris-inc/tracksync/internal/shared/logger"
)

type IssueInput struct {
	Content string
	Type    vo.RequestType
	// Env and AppVersion come from the request metadata when present.
	Env        string
	AppVersion string
}

type CreationInput struct {
	UserName   string
	Type       vo.RequestType
	Summary    string
	Identifier string
}

type ResolutionInput struct {
	UserName        string
	Type            vo.RequestType
	OriginalContent string
	LatestComment   string
	Identifier      string
}

// Generator is implemented by Client and Disabled.
type Generator interface {
	// SuggestIssue returns nil when nothing usable was produced.
	SuggestIssue(ctx context.Context, in IssueInput) (*customerrequest.IssueSuggestion, error)
	DraftCreationMessage(ctx context.Context, in CreationInput) (string, error)
	DraftResolutionMessage(ctx context.Context, in ResolutionInput) (string, error)
}

// New returns an Anthropic-backed generator when cfg is active and Disabled
// otherwise.
func New(cfg config.AIConfig, log logger.Interface) (Generator, error) {
	if !cfg.Active() {
		if cfg.Enabled {
			log.Warnw("text generation enabled without an API key, generation is off")
		}
		return Disabled{}, nil
	}
	return NewClient(cfg, log)
}

// Disabled generates nothing and never fails.
type Disabled struct{}

func (Disabled) SuggestIssue(context.Context, IssueInput) (*customerrequest.IssueSuggestion, error) {
	return nil, nil
}

func (Disabled) DraftCreationMessage(context.Context, CreationInput) (string, error) {
	return "", nil
}

func (Disabled) DraftResolutionMessage(context.Context, ResolutionInput) (string, error) {
	return "", nil
}
