package main

import (
	"context"
	"flag"
	"fmt"
	"log"
	"os"
	"os/signal"
	"syscall"

	"github.com/joho/godotenv"
	"github.com/localnerve/cubedb/internal/testutil"
)

func main() {
	var showHelp, withServer, withAuthorizer bool
	flag.BoolVar(&showHelp, "h", false, "show help")
	flag.BoolVar(&withServer, "server", false, "also build and run the cubedb server")
	flag.BoolVar(&withAuthorizer, "authorizer", true, "also run Authorizer")
	var envFilename string
	flag.StringVar(&envFilename, "f", "", "path to the .env file")
	flag.Parse()

	usage := `
Run the cubedb development containers with the environment variables from the .env file.

Usage:

testcontainers [-h] [-f ENV_FILE_PATH] [-server] [-authorizer=false]

ENV_FILE_PATH: path to the .env file

example
  testcontainers -f /path/to/something/.env -server
`
	if showHelp {
		fmt.Println(usage)
		return
	}

	if envFilename != "" {
		log.Printf("Loading environment variables from %s\n", envFilename)
		if err := godotenv.Load(envFilename); err != nil {
			log.Fatalf("Failed to load environment variables: %v\n", err)
		}
	} else {
		log.Printf("No environment file specified, using current environment variables\n")
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM, syscall.SIGQUIT)
	defer stop()

	stack, err := testutil.Start(ctx, testutil.StdLogger{}, testutil.Options{
		Authorizer: withAuthorizer,
		Server:     withServer,
	})
	if err != nil {
		log.Printf("Failed to create test containers: %v\n", err)
		os.Exit(1)
	}

	<-ctx.Done()
	log.Printf("\nReceived signal, terminating test containers...\n")
	stack.Terminate(context.Background())
}
