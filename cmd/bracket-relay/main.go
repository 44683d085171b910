// Copyright 2025 SirSeer, LLC
//
// Licensed under the Business Source License 1.1 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//     https://mariadb.com/bsl11
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.

package main

import (
	"errors"
	"fmt"
	"io/fs"
	"net/http"
	"os"

	"github.com/joho/godotenv"
	"go.uber.org/zap"

	"github.com/sirseerhq/bracket-relay/internal/log"
)

func main() {
	if err := log.Init(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}

	loadDotEnv(log.Get(), ".env")

	rootCmd := newRootCommand(http.DefaultTransport)
	err := rootCmd.Execute()
	log.Flush()

	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(mapErrorToExitCode(err))
	}
}

// loadDotEnv populates the environment from filename when it exists.
// Variables already present in the environment win. Parse errors quote the
// offending line, which may hold a secret, so only the file name is logged.
func loadDotEnv(logger *zap.Logger, filename string) {
	err := godotenv.Load(filename)
	if err == nil || errors.Is(err, fs.ErrNotExist) {
		return
	}
	logger.Warn(".env file not loaded", zap.String("file", filename))
}
