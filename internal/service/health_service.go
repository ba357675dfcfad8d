package service

import (
	"context"
	"fmt"

	"postfeed/internal/repository"
)

type HealthStatus struct {
	Database string `json:"database"`
	Tables   int    `json:"tables"`
}

type HealthService interface {
	Check(ctx context.Context) (*HealthStatus, error)
}

type healthService struct {
	pinger     repository.Pinger
	schemaRepo repository.SchemaRepository
}

func NewHealthService(pinger repository.Pinger, schemaRepo repository.SchemaRepository) HealthService {
	return &healthService{pinger: pinger, schemaRepo: schemaRepo}
}

func (h *healthService) Check(ctx context.Context) (*HealthStatus, error) {
	if err := h.pinger.PingContext(ctx); err != nil {
		return &HealthStatus{Database: "unavailable"}, fmt.Errorf("ping database: %w", err)
	}

	count, err := h.schemaRepo.CountTables(ctx)
	if err != nil {
		return &HealthStatus{Database: "ok"}, err
	}

	return &HealthStatus{Database: "ok", Tables: count}, nil
}
