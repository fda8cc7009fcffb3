package main

import (
	"context"
	"fmt"
	"net"

	"market-cache/src/config"
	pb "market-cache/src/grpc_control"
	"market-cache/src/logger"
	"market-cache/src/scheduler"

	"golang.org/x/sync/errgroup"
	"google.golang.org/grpc"
)

// -----------------------------------------------------------------------------

// runServers starts the HTTP server, the optional gRPC control server and the
// optional sweep, and stops all of them once ctx is done or one fails.
func runServers(ctx context.Context, app *application, conf *config.Config, configPath string, appLogger *logger.Logger) error {
	var lis net.Listener
	if conf.GrpcPort > 0 {
		var err error
		lis, err = net.Listen("tcp", fmt.Sprintf("%s:%d", conf.GrpcHost, conf.GrpcPort))
		if err != nil {
			appLogger.Error("failed to listen for gRPC: %v", err)
			return err
		}
	}

	var sweeper *scheduler.SeedSweeper
	if conf.Seeder.SweepEnabled {
		sweeper = scheduler.NewSeedSweeper(conf.MConfig, app.Seeder, appLogger.Named("SeedSweeper"))
		if err := sweeper.Register(); err != nil {
			if lis != nil {
				lis.Close()
			}
			return err
		}
	}

	g, ctx := errgroup.WithContext(ctx)

	// 1. FastAPIServer
	g.Go(func() error {
		return app.Server.Start()
	})
	g.Go(func() error {
		<-ctx.Done()
		return app.Server.Stop()
	})

	// 2. gRPC Control Server
	if lis != nil {
		grpcServer := grpc.NewServer()
		controlService := pb.NewControlService(conf, configPath, app.Seeder, appLogger.Named("ControlService"))
		pb.RegisterSeedControlServer(grpcServer, controlService)

		g.Go(func() error {
			appLogger.Info("Starting gRPC Control Server on %s", lis.Addr())
			return grpcServer.Serve(lis)
		})
		g.Go(func() error {
			<-ctx.Done()
			grpcServer.GracefulStop()
			return nil
		})
	}

	// 3. Universe sweep
	if sweeper != nil {
		sweeper.Start()
		g.Go(func() error {
			<-ctx.Done()
			sweeper.Stop()
			return nil
		})
	}

	return g.Wait()
}
