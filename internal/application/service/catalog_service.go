package service

import (
	"context"
	"strconv"
	"strings"
	"time"

	"github.com/garyjia/surat-menyurat/internal/application/port"
	"github.com/garyjia/surat-menyurat/internal/domain/apperr"
	"github.com/garyjia/surat-menyurat/internal/domain/entity"
)

type AwardeeInput struct {
	Name       string `json:"name"`
	University string `json:"university"`
	Major      string `json:"major"`
	Year       string `json:"year"`
	Status     string `json:"status"`
}

type ProgramInput struct {
	Name       string `json:"name"`
	Department string `json:"department"`
	Status     string `json:"status"`
	Progress   int    `json:"progress"`
	StartDate  string `json:"startDate"`
	EndDate    string `json:"endDate"`
	PIC        string `json:"pic"`
}

type TransactionInput struct {
	Description string  `json:"description"`
	Amount      float64 `json:"amount"`
	Date        string  `json:"date"`
	Category    string  `json:"category"`
}

// CatalogService covers the plain record lists with no workflow attached
type CatalogService interface {
	Awardees(ctx context.Context) ([]*entity.Awardee, error)
	CreateAwardee(ctx context.Context, input AwardeeInput) (*entity.Awardee, error)
	Programs(ctx context.Context) ([]*entity.Program, error)
	CreateProgram(ctx context.Context, input ProgramInput) (*entity.Program, error)
	Transactions(ctx context.Context) ([]*entity.Transaction, error)
	CreateTransaction(ctx context.Context, input TransactionInput) (*entity.Transaction, error)
	Templates(ctx context.Context) ([]*entity.Template, error)
}

type catalogServiceImpl struct {
	awardees     port.AwardeeRepository
	programs     port.ProgramRepository
	transactions port.TransactionRepository
	templates    port.TemplateRepository
	now          func() time.Time
}

// NewCatalogService creates a new CatalogService
func NewCatalogService(
	awardees port.AwardeeRepository,
	programs port.ProgramRepository,
	transactions port.TransactionRepository,
	templates port.TemplateRepository,
) CatalogService {
	return &catalogServiceImpl{
		awardees:     awardees,
		programs:     programs,
		transactions: transactions,
		templates:    templates,
		now:          time.Now,
	}
}

func (s *catalogServiceImpl) Awardees(ctx context.Context) ([]*entity.Awardee, error) {
	return s.awardees.List(ctx)
}

func (s *catalogServiceImpl) CreateAwardee(ctx context.Context, input AwardeeInput) (*entity.Awardee, error) {
	name := strings.TrimSpace(input.Name)
	if name == "" {
		return nil, apperr.Validationf("Name is required")
	}
	year := strings.TrimSpace(input.Year)
	if _, err := strconv.Atoi(year); err != nil {
		year = strconv.Itoa(s.now().Year())
	}
	a := &entity.Awardee{
		Name:       name,
		University: orPlaceholder(input.University, entity.PlaceholderValue),
		Major:      orPlaceholder(input.Major, entity.PlaceholderValue),
		Year:       year,
		Status:     orPlaceholder(input.Status, entity.AwardeeStatusDefault),
	}
	if err := s.awardees.Create(ctx, a); err != nil {
		return nil, err
	}
	return a, nil
}

func (s *catalogServiceImpl) Programs(ctx context.Context) ([]*entity.Program, error) {
	return s.programs.List(ctx)
}

func (s *catalogServiceImpl) CreateProgram(ctx context.Context, input ProgramInput) (*entity.Program, error) {
	name := strings.TrimSpace(input.Name)
	if name == "" {
		return nil, apperr.Validationf("Name is required")
	}
	p := &entity.Program{
		Name:       name,
		Department: strings.TrimSpace(input.Department),
		Status:     orPlaceholder(input.Status, entity.ProgramStatusDefault),
		Progress:   input.Progress,
		StartDate:  orPlaceholder(input.StartDate, entity.PlaceholderValue),
		EndDate:    orPlaceholder(input.EndDate, entity.PlaceholderValue),
		PIC:        orPlaceholder(input.PIC, entity.PlaceholderValue),
	}
	if err := s.programs.Create(ctx, p); err != nil {
		return nil, err
	}
	return p, nil
}

func (s *catalogServiceImpl) Transactions(ctx context.Context) ([]*entity.Transaction, error) {
	return s.transactions.List(ctx)
}

func (s *catalogServiceImpl) CreateTransaction(ctx context.Context, input TransactionInput) (*entity.Transaction, error) {
	desc := strings.TrimSpace(input.Description)
	if desc == "" {
		return nil, apperr.Validationf("Description is required")
	}
	t := &entity.Transaction{
		Description: desc,
		Amount:      input.Amount,
		Date:        orPlaceholder(input.Date, s.now().Format("2 Jan 2006")),
		Category:    orPlaceholder(input.Category, entity.PlaceholderValue),
	}
	if err := s.transactions.Create(ctx, t); err != nil {
		return nil, err
	}
	return t, nil
}

func (s *catalogServiceImpl) Templates(ctx context.Context) ([]*entity.Template, error) {
	return s.templates.List(ctx)
}
