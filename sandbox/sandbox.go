// Package sandbox assembles a deterministic in-memory trading environment
// from configuration: a shared ledger, two constant-product venues, a funded
// credit facility, and the executor wired over them. The CLI and integration
// tests run against it.
package sandbox

import (
	"fmt"
	"time"

	"github.com/ethereum/go-ethereum/common"
	"go.uber.org/zap"
	"golang.org/x/time/rate"

	"github.com/michaelpento.lv/arbx/asset"
	"github.com/michaelpento.lv/arbx/config"
	"github.com/michaelpento.lv/arbx/credit"
	"github.com/michaelpento.lv/arbx/events"
	"github.com/michaelpento.lv/arbx/executor"
	"github.com/michaelpento.lv/arbx/uow"
	"github.com/michaelpento.lv/arbx/venue/amm"
)

// Env is a fully wired sandbox.
type Env struct {
	Ledger   *asset.Ledger
	Recorder *events.Recorder
	Venue1   *amm.Pool
	Venue2   *amm.Pool
	Facility *credit.Facility
	Executor *executor.Executor
	Owner    common.Address
}

// Build wires the sandbox described by cfg. cfg must be validated.
func Build(cfg *config.Config, logger *zap.Logger) (*Env, error) {
	ledger := asset.NewLedger()
	recorder, err := events.NewRecorder(cfg.HistorySize)
	if err != nil {
		return nil, fmt.Errorf("failed to create recorder: %w", err)
	}
	scope := uow.NewScope(ledger, recorder)

	principal := common.HexToAddress(cfg.PrincipalAsset)
	bridge := common.HexToAddress(cfg.BridgeAsset)

	pool1 := amm.NewPool(venueName(cfg.Venue1, "venue-1"), common.HexToAddress(cfg.Venue1.Address), principal, bridge, ledger)
	pool2 := amm.NewPool(venueName(cfg.Venue2, "venue-2"), common.HexToAddress(cfg.Venue2.Address), principal, bridge, ledger)
	ledger.Mint(principal, pool1.Address(), config.MustAmount(cfg.Venue1.ReservePrincipal))
	ledger.Mint(bridge, pool1.Address(), config.MustAmount(cfg.Venue1.ReserveBridge))
	ledger.Mint(principal, pool2.Address(), config.MustAmount(cfg.Venue2.ReservePrincipal))
	ledger.Mint(bridge, pool2.Address(), config.MustAmount(cfg.Venue2.ReserveBridge))

	facility := credit.NewFacility(common.HexToAddress(cfg.Facility), ledger, scope, cfg.PremiumBps, logger)
	ledger.Mint(principal, facility.Address(), config.MustAmount(cfg.FacilityLiquidity))

	var limiter *rate.Limiter
	if cfg.TriggerRateLimit.RequestsPerSecond > 0 {
		burst := cfg.TriggerRateLimit.BurstSize
		if burst <= 0 {
			burst = 1
		}
		limiter = rate.NewLimiter(rate.Limit(cfg.TriggerRateLimit.RequestsPerSecond), burst)
	}

	route := executor.Route{
		Venue1:         pool1,
		Venue2:         pool2,
		Principal:      principal,
		Bridge:         bridge,
		BorrowAmount:   config.MustAmount(cfg.BorrowAmount),
		Hop1MinOutBps:  cfg.Hop1MinOutBps,
		Hop2MinOutBps:  cfg.Hop2MinOutBps,
		DeadlineBuffer: time.Duration(cfg.DeadlineBuffer),
	}
	exec, err := executor.New(common.HexToAddress(cfg.Executor), common.HexToAddress(cfg.Owner),
		route, facility, ledger, recorder, limiter, logger)
	if err != nil {
		return nil, fmt.Errorf("failed to create executor: %w", err)
	}

	return &Env{
		Ledger:   ledger,
		Recorder: recorder,
		Venue1:   pool1,
		Venue2:   pool2,
		Facility: facility,
		Executor: exec,
		Owner:    common.HexToAddress(cfg.Owner),
	}, nil
}

func venueName(v config.VenueConfig, fallback string) string {
	if v.Name != "" {
		return v.Name
	}
	return fallback
}
