package usecase

import (
	"github.com/relink-lab/contactsync/pkg/domain/interfaces"
	"github.com/relink-lab/contactsync/pkg/domain/model"
	"github.com/relink-lab/contactsync/pkg/service/nango"
)

type UseCases struct {
	repo    interfaces.Repository
	nango   nango.Service
	catalog *model.IntegrationCatalog

	Webhook    *WebhookUseCase
	Connection *ConnectionUseCase
	Contact    *ContactUseCase
}

type Option func(*UseCases)

// WithCatalog overrides the integration catalog
func WithCatalog(catalog *model.IntegrationCatalog) Option {
	return func(uc *UseCases) {
		uc.catalog = catalog
	}
}

func New(repo interfaces.Repository, nangoSvc nango.Service, opts ...Option) *UseCases {
	uc := &UseCases{
		repo:    repo,
		nango:   nangoSvc,
		catalog: model.DefaultIntegrationCatalog(),
	}

	for _, opt := range opts {
		opt(uc)
	}

	uc.Webhook = NewWebhookUseCase(repo, nangoSvc, uc.catalog)
	uc.Connection = NewConnectionUseCase(repo, nangoSvc, uc.catalog)
	uc.Contact = NewContactUseCase(repo)

	return uc
}
