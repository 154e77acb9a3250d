package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Membership metrics
var (
	// CompaniesCreated tracks created companies
	CompaniesCreated = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "companies_created_total",
			Help: "Total number of companies created",
		},
	)

	// JoinRequestsTotal tracks join request decisions by outcome
	JoinRequestsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "join_requests_total",
			Help: "Total number of join requests by outcome",
		},
		[]string{"outcome"}, // "submitted", "approved", "rejected"
	)

	// InviteResolutionsTotal tracks invite credential resolution attempts
	InviteResolutionsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "invite_resolutions_total",
			Help: "Total number of invite resolution attempts by kind and result",
		},
		[]string{"kind", "result"}, // kind: "code", "token"; result: "ok", "invalid", "expired"
	)

	// InviteRotationsTotal tracks invite link rotations
	InviteRotationsTotal = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "invite_rotations_total",
			Help: "Total number of invite link rotations",
		},
	)
)

// Project access metrics
var (
	// ProjectGrantsTotal tracks project access grants and revocations
	ProjectGrantsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "project_grants_total",
			Help: "Total number of project access grant operations",
		},
		[]string{"action"}, // "granted", "revoked"
	)

	// AuthorizationDenialsTotal tracks denied authorization checks
	AuthorizationDenialsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "authorization_denials_total",
			Help: "Total number of denied authorization checks",
		},
		[]string{"scope"}, // "company", "project"
	)
)
