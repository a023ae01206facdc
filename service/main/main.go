//
// Copyright 2025 Google LLC
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//      http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.
//

// This is the command line driver of the DP statistics HTTP service. The
// listen address comes from the --port flag, or from a PORT environment
// variable optionally loaded from a .env file.
package main

import (
	"flag"
	"net/http"
	"os"

	log "github.com/golang/glog"
	"github.com/joho/godotenv"

	"github.com/privstats/dp/rand"
	"github.com/privstats/dp/service"
)

var (
	port = flag.String("port", "", "Port to listen on. Defaults to the PORT environment variable, or 8080.")
	seed = flag.Int64("seed", 0, "Seed for reproducible releases in demos. 0 draws all noise from a secure source.")
)

func main() {
	flag.Parse()

	// A missing .env file is fine; the environment may be set directly.
	if err := godotenv.Load(); err != nil {
		log.Infof("No .env file loaded: %v", err)
	}

	listenPort := *port
	if listenPort == "" {
		listenPort = os.Getenv("PORT")
	}
	if listenPort == "" {
		listenPort = "8080"
	}

	src := rand.Secure()
	if *seed != 0 {
		log.Warning("Running with a seeded random source; releases are reproducible and NOT private")
		src = rand.Seeded(*seed)
	}

	mux := http.NewServeMux()
	service.New(src).RegisterHandlers(mux)

	log.Infof("DP statistics service listening on :%s", listenPort)
	log.Exit(http.ListenAndServe(":"+listenPort, mux))
}
