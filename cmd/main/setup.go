package main

import (
	"market-cache/src/broker/authcode"
	"market-cache/src/broker/checksum"
	"market-cache/src/data_source/yahoo"
	"market-cache/src/interfaces"
	"market-cache/src/logger"
	"market-cache/src/models"
	"market-cache/src/network"
	"market-cache/src/reader"
	"market-cache/src/seeder"
	"market-cache/src/server"
	"market-cache/src/storage"
)

// application holds the wired components shared by the servers.
type application struct {
	Store  interfaces.IPriceStore
	Seeder *seeder.Seeder
	Reader *reader.Reader
	Server *server.FastAPIServer
}

// -----------------------------------------------------------------------------

// setupDatabase opens the configured price store and creates its tables.
func setupDatabase(config *models.MConfig, appLogger *logger.Logger) (interfaces.IPriceStore, error) {
	store, err := storage.NewPriceStore(config, appLogger.Named("Storage"))
	if err != nil {
		appLogger.Error("Failed to init db: %v", err)
		return nil, err
	}
	if err := store.Initialize(); err != nil {
		appLogger.Error("Failed to migrate db: %v", err)
		store.Close()
		return nil, err
	}
	return store, nil
}

// -----------------------------------------------------------------------------

// setupComponents wires the seeder, reader, brokers and HTTP server.
func setupComponents(config *models.MConfig, store interfaces.IPriceStore, appLogger *logger.Logger) *application {
	networkManager := network.NewNetworkManager(config, appLogger.Named("NetworkManager"))
	quotes := yahoo.NewYahooFinanceSource(config, networkManager)

	sd := seeder.NewSeeder(config, store, quotes, appLogger.Named("Seeder"))
	rd := reader.NewReader(config, store, appLogger.Named("Reader"))
	srv := server.NewFastAPIServer(config, sd, rd, appLogger.Named("FastAPIServer"))
	sd.SetExchanger(srv)

	var ac *authcode.Broker
	if config.Brokers.AuthCode.Enabled {
		ac = authcode.NewBroker(config.Brokers.AuthCode, networkManager, appLogger.Named("AuthCodeBroker"))
		appLogger.Info("Broker enabled: %s", ac.Name())
	}
	var cs *checksum.Broker
	if config.Brokers.Checksum.Enabled {
		cs = checksum.NewBroker(config.Brokers.Checksum, networkManager, appLogger.Named("ChecksumBroker"))
		appLogger.Info("Broker enabled: %s", cs.Name())
	}
	srv.EnableBrokers(ac, cs)

	return &application{Store: store, Seeder: sd, Reader: rd, Server: srv}
}
