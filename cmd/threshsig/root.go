// SPDX-License-Identifier: Apache-2.0
//
// Copyright 2025 Peridot Crypto
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//     http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.

package main

import (
	"fmt"
	"runtime"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/peridot-crypto/go-threshsig/pkg/dkg"
)

// Version information - set via ldflags at build time
var (
	// Version is the semantic version (from VERSION file)
	Version = "dev"
	// GitCommit is the git commit hash
	GitCommit = "unknown"
	// BuildTime is the build timestamp
	BuildTime = "unknown"
)

var (
	cfgFile string
	verbose bool
)

// Global flags
var (
	codec           string
	ciphersuiteName string
)

// rootCmd represents the base command
var rootCmd = &cobra.Command{
	Use:   "threshsig",
	Short: "Threshold Schnorr key generation and signing tool",
	Long: `threshsig is a command-line tool for FROST threshold Schnorr signatures.

It runs trustless distributed key generation, two-round threshold signing,
and share repair over the in-process message bus, with pluggable
serialization formats (JSON, MessagePack, CBOR, YAML, BSON, TOML).

Use 'threshsig ceremony' to run a key generation ceremony.
Use 'threshsig sign' to produce a threshold signature from key shares.
Use 'threshsig verify' to verify key shares and signatures.
Use 'threshsig repair' to reconstruct a lost key share from helpers.`,
	PersistentPreRun: func(cmd *cobra.Command, args []string) {
		// Initialize config
		if cfgFile != "" {
			viper.SetConfigFile(cfgFile)
		} else {
			viper.AddConfigPath("$HOME/.threshsig")
			viper.AddConfigPath(".")
			viper.SetConfigName("config")
			viper.SetConfigType("yaml")
		}

		// Read config file if it exists
		if err := viper.ReadInConfig(); err == nil && verbose {
			fmt.Printf("Using config file: %s\n", viper.ConfigFileUsed())
		}

		// Environment variables
		viper.SetEnvPrefix("THRESHSIG")
		viper.AutomaticEnv()
	},
}

// versionCmd represents the version command
var versionCmd = &cobra.Command{
	Use:   "version",
	Short: "Print version information",
	Long:  `Print the version number and build information of threshsig.`,
	Run: func(cmd *cobra.Command, args []string) {
		fmt.Printf("threshsig version %s\n", Version)
		fmt.Printf("Git commit: %s\n", GitCommit)
		fmt.Printf("Build date: %s\n", BuildTime)
		fmt.Printf("Go version: %s\n", runtime.Version())
		fmt.Printf("OS/Arch: %s/%s\n", runtime.GOOS, runtime.GOARCH)
	},
}

func init() {
	// Global flags
	rootCmd.PersistentFlags().StringVar(&cfgFile, "config", "", "config file (default: $HOME/.threshsig/config.yaml)")
	rootCmd.PersistentFlags().StringVar(&codec, "codec", "json", "serialization format (json, msgpack, cbor, yaml, bson, toml)")
	rootCmd.PersistentFlags().StringVar(&ciphersuiteName, "ciphersuite", dkg.CiphersuiteEd25519, "FROST ciphersuite (FROST-ED25519-SHA512-v1, FROST-RISTRETTO255-SHA512-v1, FROST-P256-SHA256-v1, FROST-secp256k1-SHA256-v1, FROST-ED448-SHAKE256-v1)")
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "verbose output")

	// Bind flags to viper
	if err := viper.BindPFlag("codec", rootCmd.PersistentFlags().Lookup("codec")); err != nil {
		panic(fmt.Sprintf("failed to bind codec flag: %v", err))
	}
	if err := viper.BindPFlag("ciphersuite", rootCmd.PersistentFlags().Lookup("ciphersuite")); err != nil {
		panic(fmt.Sprintf("failed to bind ciphersuite flag: %v", err))
	}
	if err := viper.BindPFlag("verbose", rootCmd.PersistentFlags().Lookup("verbose")); err != nil {
		panic(fmt.Sprintf("failed to bind verbose flag: %v", err))
	}

	// Add subcommands
	rootCmd.AddCommand(versionCmd)
	rootCmd.AddCommand(ceremonyCmd)
	rootCmd.AddCommand(signCmd)
	rootCmd.AddCommand(verifyCmd)
	rootCmd.AddCommand(repairCmd)
	rootCmd.AddCommand(configCmd)
}
