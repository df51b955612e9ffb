// Package handler HTTP 接口 (gin)
package handler

import (
	"time"

	"palace-guide/algo"
	"palace-guide/db"
	"palace-guide/gps"
	"palace-guide/logger"
	"palace-guide/places"
	"palace-guide/publish"
)

// Deps 接口依赖; Users/Identifier/Places/Events 可以为空
type Deps struct {
	Resolver   *algo.Resolver
	Users      db.UserStore
	Identifier *places.Identifier
	Places     places.Searcher
	Events     publish.EventPublisher
	Sampling   gps.Config
	JWTSecret  []byte
	TokenTTL   time.Duration
}

// Handler 持有所有接口共享的只读依赖
type Handler struct {
	resolver   *algo.Resolver
	users      db.UserStore
	identifier *places.Identifier
	places     places.Searcher
	events     publish.EventPublisher
	sampling   gps.Config
	jwtSecret  []byte
	tokenTTL   time.Duration
}

// New 创建 Handler
func New(d Deps) *Handler {
	h := &Handler{
		resolver:   d.Resolver,
		users:      d.Users,
		identifier: d.Identifier,
		places:     d.Places,
		events:     d.Events,
		sampling:   d.Sampling,
		jwtSecret:  d.JWTSecret,
		tokenTTL:   d.TokenTTL,
	}
	if h.events == nil {
		h.events = publish.Nop{}
	}
	if h.identifier == nil && h.resolver != nil {
		h.identifier = places.NewIdentifier(nil, nil, h.resolver)
	}
	if h.tokenTTL <= 0 {
		h.tokenTTL = 24 * time.Hour
	}
	if h.sampling.SampleCount == 0 {
		h.sampling = gps.DefaultConfig()
	}
	return h
}

// publish 发布失败只记录日志, 不影响接口响应
func (h *Handler) publish(ev publish.LocateEvent) {
	if err := h.events.PublishLocate(ev); err != nil {
		logger.L().Debug("locate_event_not_published", "source", ev.Source, "err", err)
	}
}
