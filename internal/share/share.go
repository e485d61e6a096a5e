// Package share builds social-share targets for a results URL.
package share

import (
	"fmt"

	"clarity-score-service/internal/domain"
	"clarity-score-service/internal/scoring"
)

// Supported platforms.
const (
	LinkedIn = "linkedin"
	Twitter  = "twitter"
	Facebook = "facebook"
	Email    = "email"
	Copy     = "copy"
)

// DefaultEmailMessage precedes the results URL in the email body.
const DefaultEmailMessage = "View your ClarityScore here! "

// Platforms lists every platform in the order the results page shows them.
var Platforms = []string{LinkedIn, Twitter, Facebook, Email, Copy}

// Builder formats share links.
type Builder struct {
	emailMessage string
}

// NewBuilder returns a Builder; an empty message falls back to DefaultEmailMessage.
func NewBuilder(emailMessage string) *Builder {
	if emailMessage == "" {
		emailMessage = DefaultEmailMessage
	}
	return &Builder{emailMessage: emailMessage}
}

// Link builds the share target for platform.
func (b *Builder) Link(platform, url string) (domain.ShareLink, error) {
	escaped := scoring.EscapeComponent(url)
	link := domain.ShareLink{Platform: platform, Action: "open"}
	switch platform {
	case LinkedIn:
		link.Href = "https://www.linkedin.com/sharing/share-offsite/?url=" + escaped
	case Twitter:
		link.Href = "https://twitter.com/intent/tweet?url=" + escaped
	case Facebook:
		link.Href = "https://www.facebook.com/sharer/sharer.php?u=" + escaped
	case Email:
		link.Href = "mailto:?body=" + scoring.EscapeComponent(b.emailMessage) + escaped
	case Copy:
		link.Action = "copy"
		link.Href = url
	default:
		return domain.ShareLink{}, fmt.Errorf("%w: %q", domain.ErrUnknownPlatform, platform)
	}
	return link, nil
}

// Links builds a link for every supported platform.
func (b *Builder) Links(url string) []domain.ShareLink {
	links := make([]domain.ShareLink, 0, len(Platforms))
	for _, p := range Platforms {
		link, _ := b.Link(p, url)
		links = append(links, link)
	}
	return links
}
