package service

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/Zakuwantungsten/fuel-Order-sytem-sub000/internal/formula"
	"github.com/Zakuwantungsten/fuel-Order-sytem-sub000/internal/model"
	"github.com/Zakuwantungsten/fuel-Order-sytem-sub000/internal/repository"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
	"github.com/shopspring/decimal"
)

// Direction of the leg being fuelled.
type Direction string

const (
	DirectionGoing     Direction = "going"
	DirectionReturning Direction = "returning"
)

// Currency is derived from the station, never stored: the LAKE chain along
// the Zambia corridor bills in USD (with the Tunduma border branch as the
// exception), everything on the Tanzanian side bills in TZS.
type Currency string

const (
	CurrencyUSD Currency = "USD"
	CurrencyTZS Currency = "TZS"
)

// FormulaStatus reports what happened to a configured formula during resolve.
type FormulaStatus string

const (
	FormulaApplied     FormulaStatus = "applied"
	FormulaMissingData FormulaStatus = "missing_data"
	FormulaError       FormulaStatus = "error"
)

// Resolution sources, from the chain-of-responsibility: dynamic config
// formula, dynamic config static default, legacy hard-coded table, or the
// conservative unknown-station fallback.
const (
	SourceConfigFormula = "config_formula"
	SourceConfigDefault = "config_default"
	SourceLegacyTable   = "legacy_table"
	SourceFallback      = "fallback"
)

type ResolveInput struct {
	Station     string
	Direction   Direction
	Destination string
	TotalLiters *int
	ExtraLiters *int
	Balance     *int
}

type Resolution struct {
	Liters         int
	Rate           decimal.Decimal
	Currency       Currency
	Source         string
	FormulaStatus  FormulaStatus
	FormulaMessage string
}

type StationService interface {
	Resolve(ctx context.Context, in ResolveInput) (*Resolution, error)
	List(ctx context.Context, activeOnly bool) ([]model.StationConfig, error)
	Create(ctx context.Context, s *model.StationConfig) error
	Update(ctx context.Context, id uuid.UUID, apply func(*model.StationConfig)) (*model.StationConfig, error)
	Deactivate(ctx context.Context, id uuid.UUID) error
}

type stationService struct {
	repo repository.StationRepository
	rdb  *redis.Client
}

func NewStationService(repo repository.StationRepository, rdb *redis.Client) StationService {
	return &stationService{repo: repo, rdb: rdb}
}

const stationCacheTTL = 4 * time.Hour

// ── Legacy table ──────────────────────────────────────────────────────────────
// The hard-coded allocations the stations ran on before per-station
// configuration existed. Still the fallback for any station with no formula
// configured for the requested direction.

type legacyRule struct {
	going     int
	returning int
	rate      decimal.Decimal
}

var legacyTable = map[string]legacyRule{
	"LAKE CHILABOMBWE": {going: 260, returning: 0, rate: decimal.NewFromFloat(1.2)},
	"LAKE KAPIRI":      {going: 200, returning: 150, rate: decimal.NewFromFloat(1.2)},
	"LAKE LUSAKA":      {going: 60, returning: 100, rate: decimal.NewFromFloat(1.2)},
	"LAKE TUNDUMA":     {going: 300, returning: 250, rate: decimal.NewFromFloat(1.15)},
	"INFINITY":         {going: 400, returning: 350, rate: decimal.NewFromFloat(2.95)},
	"HASS TANGA":       {going: 100, returning: 70, rate: decimal.NewFromFloat(2.98)},
	"GBP MBEYA":        {going: 350, returning: 300, rate: decimal.NewFromFloat(2.96)},
	"CAMEL MOROGORO":   {going: 150, returning: 120, rate: decimal.NewFromFloat(2.97)},
	"PUMA DAR":         {going: 500, returning: 0, rate: decimal.NewFromFloat(2.94)},
}

var fallbackRule = legacyRule{going: 350, returning: 350, rate: decimal.NewFromFloat(1.2)}

// StationCurrency derives the billing currency from the station name.
func StationCurrency(station string) Currency {
	name := strings.ToUpper(strings.TrimSpace(station))
	if strings.HasPrefix(name, "LAKE ") && name != "LAKE TUNDUMA" {
		return CurrencyUSD
	}
	return CurrencyTZS
}

func isZambiaStation(station string) bool {
	return strings.HasPrefix(strings.ToUpper(strings.TrimSpace(station)), "LAKE ")
}

func isTangaStation(station string) bool {
	return strings.Contains(strings.ToUpper(station), "TANGA")
}

// ── Resolve ───────────────────────────────────────────────────────────────────

func (s *stationService) Resolve(ctx context.Context, in ResolveInput) (*Resolution, error) {
	name := strings.ToUpper(strings.TrimSpace(in.Station))
	if name == "" {
		return nil, errors.New("station name is required")
	}

	res := &Resolution{Currency: StationCurrency(name)}

	cfg := s.cachedConfig(ctx, name)

	if cfg != nil {
		f := cfg.FormulaGoing
		if in.Direction == DirectionReturning {
			f = cfg.FormulaReturning
		}
		if f != nil && strings.TrimSpace(*f) != "" {
			res.Rate = cfg.DefaultRate
			fctx := formula.Context{
				TotalLiters: in.TotalLiters,
				ExtraLiters: in.ExtraLiters,
				Balance:     in.Balance,
			}
			if fctx.Empty() {
				// Truck not fetched yet — the static default keeps the form
				// usable until totals arrive.
				res.Liters = staticDefault(cfg, in.Direction)
				res.Source = SourceConfigDefault
				return res, nil
			}
			liters, err := formula.Evaluate(*f, fctx)
			switch {
			case err == nil:
				res.Liters = liters
				res.Source = SourceConfigFormula
				res.FormulaStatus = FormulaApplied
			default:
				var missing *formula.MissingDataError
				res.Liters = 0
				res.Source = SourceConfigFormula
				if errors.As(err, &missing) {
					res.FormulaStatus = FormulaMissingData
				} else {
					res.FormulaStatus = FormulaError
				}
				res.FormulaMessage = fmt.Sprintf("formula for %s (%s): %s", name, in.Direction, err.Error())
			}
			return res, nil
		}
	}

	// No formula for this direction (or no dynamic config at all) — legacy
	// static table with destination overrides, then the conservative default.
	rule, known := legacyTable[name]
	if !known {
		rule = fallbackRule
		res.Source = SourceFallback
	} else {
		res.Source = SourceLegacyTable
	}

	res.Rate = rule.rate
	if in.Direction == DirectionReturning {
		res.Liters = rule.returning
	} else {
		res.Liters = rule.going
	}

	if known {
		dest := strings.ToLower(in.Destination)
		if isZambiaStation(name) && in.Direction == DirectionGoing {
			if strings.Contains(dest, "lusaka") {
				res.Liters = 60
			} else if strings.Contains(dest, "lubumbashi") {
				res.Liters = 260
			}
		}
		if isTangaStation(name) && in.Direction == DirectionReturning && IsMSADestination(in.Destination) {
			res.Liters = 70
		}
	}

	return res, nil
}

func staticDefault(cfg *model.StationConfig, dir Direction) int {
	if dir == DirectionReturning {
		return cfg.DefaultLitersReturning
	}
	return cfg.DefaultLitersGoing
}

// cachedConfig reads the station config through the redis cache. Any cache
// failure degrades to a direct DB read; a DB miss is returned as nil.
func (s *stationService) cachedConfig(ctx context.Context, name string) *model.StationConfig {
	key := "station:" + name
	if s.rdb != nil {
		if raw, err := s.rdb.Get(ctx, key).Bytes(); err == nil {
			var cfg model.StationConfig
			if json.Unmarshal(raw, &cfg) == nil {
				return &cfg
			}
		}
	}
	cfg, err := s.repo.FindByName(ctx, name)
	if err != nil {
		return nil
	}
	if s.rdb != nil {
		if raw, err := json.Marshal(cfg); err == nil {
			s.rdb.Set(ctx, key, raw, stationCacheTTL)
		}
	}
	return cfg
}

func (s *stationService) invalidate(ctx context.Context, name string) {
	if s.rdb != nil {
		s.rdb.Del(ctx, "station:"+strings.ToUpper(strings.TrimSpace(name)))
	}
}

// ── Config CRUD ───────────────────────────────────────────────────────────────

func (s *stationService) List(ctx context.Context, activeOnly bool) ([]model.StationConfig, error) {
	return s.repo.List(ctx, activeOnly)
}

func (s *stationService) Create(ctx context.Context, cfg *model.StationConfig) error {
	cfg.StationName = strings.ToUpper(strings.TrimSpace(cfg.StationName))
	if err := validateFormulas(cfg); err != nil {
		return err
	}
	cfg.IsActive = true
	if err := s.repo.Create(ctx, cfg); err != nil {
		return err
	}
	s.invalidate(ctx, cfg.StationName)
	return nil
}

func (s *stationService) Update(ctx context.Context, id uuid.UUID, apply func(*model.StationConfig)) (*model.StationConfig, error) {
	cfg, err := s.repo.FindByID(ctx, id)
	if err != nil {
		return nil, errors.New("station not found")
	}
	apply(cfg)
	if err := validateFormulas(cfg); err != nil {
		return nil, err
	}
	if err := s.repo.Update(ctx, cfg); err != nil {
		return nil, err
	}
	s.invalidate(ctx, cfg.StationName)
	return cfg, nil
}

func (s *stationService) Deactivate(ctx context.Context, id uuid.UUID) error {
	cfg, err := s.repo.FindByID(ctx, id)
	if err != nil {
		return errors.New("station not found")
	}
	if err := s.repo.Deactivate(ctx, id); err != nil {
		return err
	}
	s.invalidate(ctx, cfg.StationName)
	return nil
}

func validateFormulas(cfg *model.StationConfig) error {
	for _, f := range []*string{cfg.FormulaGoing, cfg.FormulaReturning} {
		if f == nil || strings.TrimSpace(*f) == "" {
			continue
		}
		if err := formula.Validate(*f); err != nil {
			return fmt.Errorf("invalid formula %q: %w", *f, err)
		}
	}
	return nil
}
