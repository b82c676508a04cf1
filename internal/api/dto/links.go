package dto

import (
	"net/http"
	"strconv"
)

// Link is one hypermedia control attached to a representation.
type Link struct {
	Href   string `json:"href"`
	Method string `json:"method,omitempty"`
}

// Links maps relation names to links.
type Links map[string]Link

// LinkBuilder renders hrefs under the mounted API prefix.
type LinkBuilder struct {
	prefix string
}

// NewLinkBuilder returns a builder for routes mounted at prefix.
func NewLinkBuilder(prefix string) LinkBuilder {
	return LinkBuilder{prefix: prefix}
}

// Drafts is the draft collection href.
func (b LinkBuilder) Drafts() string {
	return b.prefix + "/drafts"
}

// Draft is the href of one draft.
func (b LinkBuilder) Draft(id int64) string {
	return b.Drafts() + "/" + strconv.FormatInt(id, 10)
}

// Messages is the message collection href.
func (b LinkBuilder) Messages() string {
	return b.prefix + "/messages"
}

// Message is the href of one message.
func (b LinkBuilder) Message(id int64) string {
	return b.Messages() + "/" + strconv.FormatInt(id, 10)
}

func get(href string) Link {
	return Link{Href: href, Method: http.MethodGet}
}
