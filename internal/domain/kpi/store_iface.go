package kpi

import "context"

type RequestFilter struct {
	TeacherID string
	Status    string
}

type StoreAPI interface {
	InsertRequest(ctx context.Context, r KpiRequest) (KpiRequest, error)
	GetRequest(ctx context.Context, id string) (KpiRequest, error)
	ListRequests(ctx context.Context, filter RequestFilter) ([]KpiRequest, error)
	// ApproveRequest marks the request approved and inserts the active Kpi
	// in a single transaction.
	ApproveRequest(ctx context.Context, id, reviewerID, comments string) (KpiRequest, Kpi, error)
	RejectRequest(ctx context.Context, id, reviewerID, comments string) (KpiRequest, error)
	ListKpis(ctx context.Context, teacherID string) ([]Kpi, error)
	GetKpi(ctx context.Context, id string) (Kpi, error)
	UpdateKpiProgress(ctx context.Context, id string, progress float64, status string) (Kpi, error)
}
