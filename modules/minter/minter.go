package minter

import (
	"context"
	"strings"
	"time"

	"github.com/cockroachdb/errors"
	"github.com/gofiber/fiber/v2"
	"github.com/questline/mint-console/common/errs"
	"github.com/questline/mint-console/internal/config"
	"github.com/questline/mint-console/internal/postgres"
	minterapi "github.com/questline/mint-console/modules/minter/api"
	"github.com/questline/mint-console/modules/minter/blobstore"
	"github.com/questline/mint-console/modules/minter/blobstore/ipfsstore"
	"github.com/questline/mint-console/modules/minter/blobstore/s3store"
	"github.com/questline/mint-console/modules/minter/chain/blockfrost"
	minterdatagateway "github.com/questline/mint-console/modules/minter/datagateway"
	minterfirestore "github.com/questline/mint-console/modules/minter/repository/firestore"
	minterpostgres "github.com/questline/mint-console/modules/minter/repository/postgres"
	minterusecase "github.com/questline/mint-console/modules/minter/usecase"
	"github.com/questline/mint-console/modules/minter/wallet"
	"github.com/questline/mint-console/modules/minter/wallet/bridge"
	"github.com/questline/mint-console/modules/minter/wallet/embedded"
	"github.com/questline/mint-console/pkg/logger"
	"github.com/samber/do/v2"
	"github.com/samber/lo"
)

const Version = "v0.1.0"

const defaultConfirmTimeout = 5 * time.Minute

// Module is the wired minter: persistence, chain access, wallet, blob store
// and the usecase layer behind the API and the terminal commands.
type Module struct {
	usecase      *minterusecase.Usecase
	cleanupFuncs []func(context.Context) error
}

func (m *Module) Usecase() *minterusecase.Usecase {
	return m.usecase
}

func (m *Module) Shutdown() error {
	ctx := context.Background()
	for _, cleanup := range m.cleanupFuncs {
		if err := cleanup(ctx); err != nil {
			return errors.WithStack(err)
		}
	}
	return nil
}

func New(injector do.Injector) (*Module, error) {
	ctx := do.MustInvoke[context.Context](injector)
	conf := do.MustInvoke[config.Config](injector)
	moduleConf := conf.Modules.Minter

	var (
		registryDg minterdatagateway.RegistryDataGateway
		ledgerDg   minterdatagateway.MintLedgerDataGateway
	)
	var cleanupFuncs []func(context.Context) error
	switch strings.ToLower(moduleConf.Database) {
	case "", "firestore":
		repo, err := minterfirestore.NewRepository(ctx, moduleConf.Firestore)
		if err != nil {
			return nil, errors.Wrap(err, "can't create Firestore repository")
		}
		cleanupFuncs = append(cleanupFuncs, func(ctx context.Context) error {
			return repo.Close()
		})
		registryDg = repo
		ledgerDg = repo
	case "postgresql", "postgres", "pg":
		pg, err := postgres.NewPool(ctx, moduleConf.Postgres)
		if err != nil {
			if errors.Is(err, errs.InvalidArgument) {
				return nil, errors.Wrap(err, "invalid Postgres configuration for minter")
			}
			return nil, errors.Wrap(err, "can't create Postgres connection pool")
		}
		cleanupFuncs = append(cleanupFuncs, func(ctx context.Context) error {
			pg.Close()
			return nil
		})
		repo := minterpostgres.NewRepository(pg)
		registryDg = repo
		ledgerDg = repo
	default:
		return nil, errors.Wrapf(errs.Unsupported, "%q database for minter is not supported", moduleConf.Database)
	}

	chainClient, err := blockfrost.New(moduleConf.Blockfrost, conf.Network)
	if err != nil {
		return nil, errors.Wrap(err, "can't create Blockfrost client")
	}

	var walletConn wallet.Connector
	walletKind := wallet.Kind(strings.ToLower(moduleConf.Wallet.Kind))
	if walletKind == "" {
		walletKind = wallet.KindEmbedded
	}
	switch {
	case walletKind == wallet.KindEmbedded:
		walletConn, err = embedded.New(moduleConf.Wallet.Embedded, conf.Network, chainClient)
		if err != nil {
			return nil, errors.Wrap(err, "can't create embedded wallet")
		}
	case walletKind.IsSupported():
		walletConn, err = bridge.New(moduleConf.Wallet.Bridge, walletKind)
		if err != nil {
			return nil, errors.Wrap(err, "can't create wallet bridge client")
		}
	default:
		return nil, errors.Wrapf(errs.Unsupported, "%q wallet kind is not supported", moduleConf.Wallet.Kind)
	}

	var blobStore blobstore.Store
	switch strings.ToLower(moduleConf.Storage.Backend) {
	case "", "ipfs":
		blobStore = ipfsstore.New(moduleConf.Storage.IPFS)
	case "s3":
		blobStore, err = s3store.New(ctx, moduleConf.Storage.S3)
		if err != nil {
			return nil, errors.Wrap(err, "can't create S3 blob store")
		}
	default:
		return nil, errors.Wrapf(errs.Unsupported, "%q storage backend is not supported", moduleConf.Storage.Backend)
	}

	confirmTimeout := moduleConf.ConfirmTimeout
	if confirmTimeout <= 0 {
		confirmTimeout = defaultConfirmTimeout
	}

	executor := NewExecutor(walletConn, chainClient, registryDg, ledgerDg, conf.Network, confirmTimeout)
	exporter := NewLedgerExporter(ledgerDg)
	uc := minterusecase.New(registryDg, ledgerDg, walletConn, executor, exporter, blobStore, conf.Network, moduleConf.BatchSize)

	// Mount API
	apiHandlers := lo.Uniq(moduleConf.APIHandlers)
	for _, handler := range apiHandlers {
		switch handler {
		case "http":
			httpServer, err := do.Invoke[*fiber.App](injector)
			if err != nil {
				return nil, errors.Wrap(err, "http api handler configured but no http server available")
			}
			minterHTTPHandler := minterapi.NewHTTPHandler(conf.Network, uc)
			if err := minterHTTPHandler.Mount(httpServer); err != nil {
				return nil, errors.Wrap(err, "can't mount minter API")
			}
			logger.InfoContext(ctx, "Mounted HTTP handler")
		default:
			return nil, errors.Wrapf(errs.Unsupported, "%q API handler is not supported", handler)
		}
	}

	return &Module{
		usecase:      uc,
		cleanupFuncs: cleanupFuncs,
	}, nil
}
