package service

import (
	"context"

	"aegis-review-be/internal/catalog"
	"aegis-review-be/internal/dto"
)

type ICaseService interface {
	GetAll(ctx context.Context) (*dto.ListCasesResponse, error)
	Show(ctx context.Context, caseID string) (*dto.CaseResponse, error)
}

type caseService struct {
	cat *catalog.Catalog
}

func NewCaseService(cat *catalog.Catalog) ICaseService {
	return &caseService{cat: cat}
}

func (c *caseService) GetAll(ctx context.Context) (*dto.ListCasesResponse, error) {
	cases := c.cat.Cases()
	result := make([]dto.CaseResponse, 0, len(cases))
	for i := range cases {
		result = append(result, dto.FromCase(&cases[i]))
	}
	return &dto.ListCasesResponse{Cases: result, Total: len(result)}, nil
}

func (c *caseService) Show(ctx context.Context, caseID string) (*dto.CaseResponse, error) {
	cs, ok := c.cat.ByID(caseID)
	if !ok {
		return nil, ErrUnknownCase
	}
	resp := dto.FromCase(cs)
	return &resp, nil
}
