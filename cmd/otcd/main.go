package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"
	"time"

	log "github.com/sirupsen/logrus"

	"github.com/otcmarsbase/contracts-v1/internal/config"
	"github.com/otcmarsbase/contracts-v1/internal/core/application"
	"github.com/otcmarsbase/contracts-v1/internal/core/domain"
	"github.com/otcmarsbase/contracts-v1/internal/core/ports"
	"github.com/otcmarsbase/contracts-v1/internal/infrastructure/assetledger"
	dbbadger "github.com/otcmarsbase/contracts-v1/internal/infrastructure/storage/db/badger"
	"github.com/otcmarsbase/contracts-v1/internal/infrastructure/storage/db/inmemory"
	"github.com/otcmarsbase/contracts-v1/internal/infrastructure/vault"
	httpinterface "github.com/otcmarsbase/contracts-v1/internal/interfaces/http"
)

func main() {
	if err := config.InitConfig(); err != nil {
		log.WithError(err).Fatal("invalid configuration")
	}
	log.SetLevel(log.Level(config.GetInt(config.LogLevelKey)))

	orderRepo, whitelistRepo, closeDb, err := openStores()
	if err != nil {
		log.WithError(err).Fatal("error while opening stores")
	}
	defer closeDb()

	var ledger ports.AssetLedger
	if addr := config.GetString(config.AssetLedgerAddrKey); addr != "" {
		ledger = assetledger.NewHTTPLedger(addr)
	} else {
		ledger = assetledger.NewInMemoryLedger()
		log.Warn("no asset ledger address configured, using the embedded in-memory ledger")
	}

	vaultAccount := config.GetString(config.VaultAccountKey)
	custody := vault.NewService(ledger, vaultAccount)
	keys := domain.NewKeyDeriver(time.Now, config.GetKeyTick())

	engine := application.NewEngine(
		orderRepo, whitelistRepo, ledger, custody, keys,
		config.GetString(config.OperatorKey), vaultAccount, nil,
	)

	server := httpinterface.NewServer(
		application.NewOrderService(engine),
		application.NewOperatorService(engine),
		application.NewManualService(engine),
	)

	addr := fmt.Sprintf(":%d", config.GetInt(config.ListeningPortKey))
	go func() {
		if err := server.Start(addr); err != nil {
			log.WithError(err).Fatal("error listening on http interface")
		}
	}()

	log.Debug("daemon started")

	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, syscall.SIGTERM, syscall.SIGINT)
	<-sigChan

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := server.Stop(ctx); err != nil {
		log.WithError(err).Error("error while shutting down http interface")
	}

	log.Debug("exiting")
}

func openStores() (domain.OrderRepository, domain.WhitelistRepository, func(), error) {
	switch config.GetString(config.DBTypeKey) {
	case config.DBBadger:
		dbDir := filepath.Join(config.GetDatadir(), config.DbLocation)
		dbManager, err := dbbadger.NewDbManager(dbDir, log.New())
		if err != nil {
			return nil, nil, nil, err
		}
		closeFn := func() {
			if err := dbManager.Close(); err != nil {
				log.WithError(err).Error("error while closing stores")
			}
		}
		return dbbadger.NewOrderRepositoryImpl(dbManager),
			dbbadger.NewWhitelistRepositoryImpl(dbManager), closeFn, nil
	default:
		dbManager := inmemory.NewDbManager()
		return inmemory.NewOrderRepositoryImpl(dbManager),
			inmemory.NewWhitelistRepositoryImpl(dbManager), func() {}, nil
	}
}
