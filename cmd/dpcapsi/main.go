//
// Copyright (c) 2026 TikTok Pte. Ltd.
//
// All rights reserved.
//

// Command dpcapsi runs one party of the DPCA-PSI protocol: it loads a
// JSON configuration file and a CSV data file, runs the PSI and
// attribution session against a peer over TCP, and writes the result.
package main

import (
	"crypto/rand"
	"flag"
	"fmt"
	"log"
	"net"
	"os"

	"go.uber.org/zap"

	"github.com/tiktok-privacy-innovation/PrivacyGo/bio"
	"github.com/tiktok-privacy-innovation/PrivacyGo/config"
	"github.com/tiktok-privacy-innovation/PrivacyGo/csvio"
	"github.com/tiktok-privacy-innovation/PrivacyGo/session"
)

func main() {
	configPath := flag.String("config", "", "Path to the JSON configuration file")
	inputPath := flag.String("input", "", "Path to the input data CSV file, overrides input_file")
	outputPath := flag.String("output", "", "Path to write the attribution result to, overrides output_file")
	tau := flag.Float64("tau", 20, "Attribution window width")
	sender := flag.Bool("sender", false, "Run as the sender party, overrides is_sender")
	receiver := flag.Bool("receiver", false, "Run as the receiver party, overrides is_sender")
	genData := flag.Int("gen-data", 0, "Write a synthetic data file with this many rows to -input and exit")
	flag.Parse()

	if *genData > 0 {
		if *inputPath == "" {
			fmt.Println("dpcapsi: -gen-data requires -input")
			os.Exit(1)
		}
		if err := csvio.Synthesize(*inputPath, 3, *genData, rand.Reader); err != nil {
			log.Fatal(err)
		}
		return
	}

	if *configPath == "" {
		fmt.Println("dpcapsi: -config is required")
		os.Exit(1)
	}

	cfg, err := config.Load(*configPath)
	if err != nil {
		log.Fatal(err)
	}
	if *inputPath != "" {
		cfg.Common.InputFile = *inputPath
	}
	if *outputPath != "" {
		cfg.Common.OutputFile = *outputPath
	}
	if *sender {
		cfg.Common.IsSender = true
	}
	if *receiver {
		cfg.Common.IsSender = false
	}
	if err := cfg.Validate(); err != nil {
		fmt.Printf("dpcapsi: invalid configuration: %s\n", err)
		os.Exit(1)
	}

	table, err := csvio.ReadTable(cfg.Common.InputFile, cfg.Common.IDsNum)
	if err != nil {
		fmt.Printf("dpcapsi: failed to read input file: %s\n", err)
		os.Exit(1)
	}

	var logger *zap.Logger
	if cfg.Common.Verbose {
		logger, err = zap.NewDevelopment()
	} else {
		logger, err = zap.NewProduction()
	}
	if err != nil {
		log.Fatal(err)
	}
	defer logger.Sync()

	conn, err := dial(cfg)
	if err != nil {
		fmt.Printf("dpcapsi: network setup failed: %s\n", err)
		os.Exit(1)
	}
	defer conn.Close()

	result, err := session.Run(conn, cfg.Common.IsSender, cfg.PSIParams(), table, *tau, session.Config{Logger: logger})
	if err != nil {
		fmt.Printf("dpcapsi: session failed: %s\n", err)
		os.Exit(1)
	}

	logger.Info("dpcapsi: done",
		zap.Float64("attribution", result.Attribution),
		zap.Uint64("bytes_sent", result.BytesSent),
		zap.Uint64("bytes_recvd", result.BytesRecvd))
	fmt.Printf("Attribution: %v\n", result.Attribution)

	if cfg.Common.OutputFile != "" {
		if err := os.WriteFile(cfg.Common.OutputFile, []byte(fmt.Sprintf("%v\n", result.Attribution)), 0o600); err != nil {
			fmt.Printf("dpcapsi: failed to write output file: %s\n", err)
			os.Exit(1)
		}
	}
}

// dial brings up the single TCP channel used by a session: the sender
// connects to the configured address/port, the receiver listens for
// exactly one connection.
func dial(cfg *config.Config) (*bio.Conn, error) {
	addr := fmt.Sprintf("%s:%d", cfg.Common.Address, cfg.Port())
	if cfg.Common.IsSender {
		nc, err := net.Dial("tcp", addr)
		if err != nil {
			return nil, err
		}
		return bio.NewConn(nc), nil
	}

	ln, err := net.Listen("tcp", addr)
	if err != nil {
		return nil, err
	}
	defer ln.Close()

	nc, err := ln.Accept()
	if err != nil {
		return nil, err
	}
	return bio.NewConn(nc), nil
}
