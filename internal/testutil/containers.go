// containers.go
//
// A versioned, multidimensional decision-table store
// Copyright (c) 2026 Alex Grant <info@localnerve.com> (https://www.localnerve.com), LocalNerve LLC
//
// This file is part of cubedb.
// cubedb is free software: you can redistribute it and/or modify it
// under the terms of the GNU Affero General Public License as published by the Free Software
// Foundation, either version 3 of the License, or (at your option) any later version.
// cubedb is distributed in the hope that it will be useful, but WITHOUT ANY WARRANTY;
// without even the implied warranty of MERCHANTABILITY or FITNESS FOR A PARTICULAR PURPOSE.
// See the GNU Affero General Public License for more details.
// You should have received a copy of the GNU Affero General Public License along with cubedb.
// If not, see <https://www.gnu.org/licenses/>.
// Additional terms under GNU AGPL version 3 section 7:
// a) The reasonable legal notice of original copyright and author attribution must be preserved
//    by including the string: "Copyright (c) 2026 Alex Grant <info@localnerve.com> (https://www.localnerve.com), LocalNerve LLC"
//    in this material, copies, or source code of derived works.

// Package testutil starts the containers the integration and end-to-end tests run
// against: MariaDB, optionally Authorizer, and optionally the cubedb server built from
// the repository Dockerfile. Settings come from the environment (see .env).
package testutil

import (
	"context"
	"fmt"
	"log"
	"os"
	"strings"
	"time"

	"github.com/docker/docker/api/types/build"
	"github.com/docker/docker/api/types/container"
	"github.com/docker/docker/api/types/image"
	"github.com/docker/docker/client"
	"github.com/docker/go-connections/nat"
	"github.com/google/uuid"
	"github.com/testcontainers/testcontainers-go"
	"github.com/testcontainers/testcontainers-go/network"
	"github.com/testcontainers/testcontainers-go/wait"
)

const (
	serverImage      = "cubedb-test:latest"
	authzNetworkName = "authorizer"
)

// Logger is satisfied by *testing.T and StdLogger.
type Logger interface {
	Logf(format string, args ...any)
}

// StdLogger logs through the standard logger for command-line use.
type StdLogger struct{}

func (StdLogger) Logf(format string, args ...any) { log.Printf(format, args...) }

// Options selects the containers beyond the database.
type Options struct {
	Authorizer bool
	Server     bool
}

// Stack is a running set of containers on one network.
type Stack struct {
	Network             *testcontainers.DockerNetwork
	DBContainer         testcontainers.Container
	AuthorizerContainer testcontainers.Container
	ServerContainer     testcontainers.Container
	BuilderContainer    testcontainers.Container
	logger              Logger
}

// Terminate stops every container that was started, in reverse order.
func (s *Stack) Terminate(ctx context.Context) {
	for _, c := range []struct {
		name string
		c    testcontainers.Container
	}{
		{"cubedb", s.ServerContainer},
		{"cubedb builder", s.BuilderContainer},
		{"Authorizer", s.AuthorizerContainer},
		{"MariaDB", s.DBContainer},
	} {
		if c.c == nil {
			continue
		}
		if err := c.c.Terminate(ctx); err != nil {
			s.logger.Logf("Failed to terminate %s: %v", c.name, err)
		}
	}
	if s.Network != nil {
		if err := s.Network.Remove(ctx); err != nil {
			s.logger.Logf("Failed to remove network: %v", err)
		}
	}
}

// Endpoint returns host:port of a container's exposed port as seen from the host.
func Endpoint(ctx context.Context, c testcontainers.Container, port string) (string, string, error) {
	host, err := c.Host(ctx)
	if err != nil {
		return "", "", err
	}
	mapped, err := c.MappedPort(ctx, nat.Port(port+"/tcp"))
	if err != nil {
		return "", "", err
	}
	return host, mapped.Port(), nil
}

// Start brings up the stack. On error every container already started is terminated.
func Start(ctx context.Context, logger Logger, opts Options) (*Stack, error) {
	s := &Stack{logger: logger}
	if err := s.start(ctx, opts); err != nil {
		s.Terminate(ctx)
		return nil, err
	}
	return s, nil
}

func (s *Stack) start(ctx context.Context, opts Options) error {
	nw, err := network.New(ctx)
	if err != nil {
		return fmt.Errorf("failed to create network: %w", err)
	}
	s.Network = nw

	if err := s.startDatabase(ctx); err != nil {
		return err
	}
	if opts.Authorizer {
		if err := s.startAuthorizer(ctx); err != nil {
			return err
		}
	}
	if opts.Server {
		if err := s.startServer(ctx, opts.Authorizer); err != nil {
			return err
		}
	}
	return nil
}

func (s *Stack) startDatabase(ctx context.Context) error {
	dbType := os.Getenv("DB_TYPE")
	if dbType != "mysql" && dbType != "mariadb" {
		return fmt.Errorf("DB_TYPE %q is not supported by the test stack", dbType)
	}
	tcpDbPort, err := nat.NewPort("tcp", os.Getenv("DB_PORT"))
	if err != nil {
		return fmt.Errorf("failed to create DB port: %w", err)
	}

	dbContainer, err := testcontainers.GenericContainer(ctx, testcontainers.GenericContainerRequest{
		ContainerRequest: testcontainers.ContainerRequest{
			Image:        os.Getenv("DB_IMAGE"),
			ExposedPorts: []string{string(tcpDbPort)},
			Env: map[string]string{
				"MYSQL_ROOT_PASSWORD": os.Getenv("DB_ROOT_PASSWORD"),
				"MYSQL_DATABASE":      os.Getenv("DB_APP_DATABASE"),
			},
			WaitingFor: wait.ForListeningPort(tcpDbPort).WithStartupTimeout(60 * time.Second),
			Networks:   []string{s.Network.Name},
			NetworkAliases: map[string][]string{
				s.Network.Name: {os.Getenv("DB_HOST")},
			},
		},
		Started: true,
	})
	if err != nil {
		return fmt.Errorf("failed to start database: %w", err)
	}
	s.DBContainer = dbContainer

	host, port, err := Endpoint(ctx, dbContainer, tcpDbPort.Port())
	if err != nil {
		return err
	}
	if err := InitMariaDB(host, port); err != nil {
		return fmt.Errorf("failed to initialize database: %w", err)
	}
	s.logger.Logf("DB_HOST=%s DB_PORT=%s", host, port)
	return nil
}

func (s *Stack) startAuthorizer(ctx context.Context) error {
	tcpAuthzPort, err := nat.NewPort("tcp", os.Getenv("AUTHZ_PORT"))
	if err != nil {
		return fmt.Errorf("failed to create Authorizer port: %w", err)
	}
	authzLogLevel := "info"
	if os.Getenv("DEBUG_CONTAINER") == "true" {
		authzLogLevel = "debug"
	}
	authzDbConnection := fmt.Sprintf("root:%s@tcp(%s:%s)/%s",
		os.Getenv("DB_ROOT_PASSWORD"), os.Getenv("DB_HOST"), os.Getenv("DB_PORT"), os.Getenv("AUTHZ_DATABASE"))

	authorizerContainer, err := testcontainers.GenericContainer(ctx, testcontainers.GenericContainerRequest{
		ContainerRequest: testcontainers.ContainerRequest{
			Image:        os.Getenv("AUTHZ_IMAGE"),
			ExposedPorts: []string{string(tcpAuthzPort)},
			Env: map[string]string{
				"ENV":           "production",
				"CLIENT_ID":     os.Getenv("AUTHZ_CLIENT_ID"),
				"PORT":          os.Getenv("AUTHZ_PORT"),
				"DATABASE_TYPE": os.Getenv("DB_TYPE"),
				"DATABASE_NAME": os.Getenv("AUTHZ_DATABASE"),
				"DATABASE_URL":  authzDbConnection,
				"ADMIN_SECRET":  os.Getenv("AUTHZ_ADMIN_SECRET"),
				"ROLES":         "admin,user",
				"DEFAULT_ROLES": "user",
				"LOG_LEVEL":     authzLogLevel,
			},
			WaitingFor: wait.ForLog("Authorizer running at PORT:").WithStartupTimeout(10 * time.Second),
			Networks:   []string{s.Network.Name},
			NetworkAliases: map[string][]string{
				s.Network.Name: {authzNetworkName},
			},
		},
		Started: true,
	})
	if err != nil {
		return fmt.Errorf("failed to start Authorizer: %w", err)
	}
	s.AuthorizerContainer = authorizerContainer

	host, port, err := Endpoint(ctx, authorizerContainer, tcpAuthzPort.Port())
	if err != nil {
		return err
	}
	s.logger.Logf("AUTHZ_URL=http://%s:%s", host, port)
	return nil
}

func (s *Stack) startServer(ctx context.Context, withAuthorizer bool) error {
	debugContainer := os.Getenv("DEBUG_CONTAINER") == "true"
	portNumber := os.Getenv("PORT")
	tcpPort, err := nat.NewPort("tcp", portNumber)
	if err != nil {
		return fmt.Errorf("failed to create cubedb port: %w", err)
	}

	exposedPorts := []string{string(tcpPort)}
	if debugContainer {
		exposedPorts = append(exposedPorts, "2345/tcp")
	}

	authzURL := os.Getenv("AUTHZ_URL")
	if withAuthorizer {
		authzURL = fmt.Sprintf("http://%s:%s", authzNetworkName, os.Getenv("AUTHZ_PORT"))
	}

	var waitStrategy wait.Strategy = wait.ForHTTP("/metrics").WithPort(tcpPort).WithStartupTimeout(30 * time.Second)
	if debugContainer {
		waitStrategy = wait.ForLog("API server listening at: [::]:2345").WithStartupTimeout(5 * time.Minute)
	}

	req := testcontainers.ContainerRequest{
		ExposedPorts: exposedPorts,
		Env: map[string]string{
			"DB_TYPE":                 os.Getenv("DB_TYPE"),
			"DB_HOST":                 os.Getenv("DB_HOST"),
			"DB_PORT":                 os.Getenv("DB_PORT"),
			"DB_APP_DATABASE":         os.Getenv("DB_APP_DATABASE"),
			"DB_APP_USER":             os.Getenv("DB_APP_USER"),
			"DB_APP_PASSWORD":         os.Getenv("DB_APP_PASSWORD"),
			"DB_APP_CONNECTION_LIMIT": os.Getenv("DB_APP_CONNECTION_LIMIT"),
			"AUTHZ_URL":               authzURL,
			"AUTHZ_CLIENT_ID":         os.Getenv("AUTHZ_CLIENT_ID"),
			"PORT":                    portNumber,
		},
		HostConfigModifier: func(hostConfig *container.HostConfig) {
			if debugContainer {
				hostConfig.PortBindings = nat.PortMap{
					"2345/tcp": []nat.PortBinding{{HostIP: "127.0.0.1", HostPort: "2345"}},
				}
				hostConfig.CapAdd = []string{"SYS_PTRACE"}
				hostConfig.SecurityOpt = []string{"apparmor:unconfined"}
			}
		},
		WaitingFor: waitStrategy,
		Networks:   []string{s.Network.Name},
	}
	if debugContainer {
		req.Entrypoint = []string{
			"/usr/local/bin/dlv", "--listen=:2345", "--headless=true", "--api-version=2",
			"--accept-multiclient", "exec", "./cubedb",
		}
	}

	exists, err := imageExists(ctx, serverImage)
	if err != nil {
		return fmt.Errorf("failed to check if image exists: %w", err)
	}
	if exists {
		s.logger.Logf("Image %s exists, reusing...", serverImage)
		req.Image = serverImage
	} else {
		s.logger.Logf("Image %s does not exist, building...", serverImage)
		fromDockerfile, err := s.buildServer(ctx, debugContainer)
		if err != nil {
			return err
		}
		req.FromDockerfile = fromDockerfile
	}

	serverContainer, err := testcontainers.GenericContainer(ctx, testcontainers.GenericContainerRequest{
		ContainerRequest: req,
		Started:          true,
	})
	if err != nil {
		return fmt.Errorf("failed to start cubedb: %w", err)
	}
	s.ServerContainer = serverContainer

	host, port, err := Endpoint(ctx, serverContainer, tcpPort.Port())
	if err != nil {
		return err
	}
	s.logger.Logf("BASE_URL=http://%s:%s", host, port)
	return nil
}

// buildServer builds the builder stage once so the runtime stage build can reuse its
// layers, and returns the runtime stage build request.
func (s *Stack) buildServer(ctx context.Context, debug bool) (testcontainers.FromDockerfile, error) {
	sessionID := uuid.New().String()
	buildArgs := map[string]*string{"RESOURCE_REAPER_SESSION_ID": &sessionID}
	if debug {
		debugArg := "true"
		buildArgs["DEBUG"] = &debugArg
	}

	buildContext := os.Getenv("TESTCONTAINERS_BUILD_CONTEXT")
	if buildContext == "" {
		buildContext = "../.."
	}

	builder, err := testcontainers.GenericContainer(ctx, testcontainers.GenericContainerRequest{
		ContainerRequest: testcontainers.ContainerRequest{
			FromDockerfile: testcontainers.FromDockerfile{
				Context:    buildContext,
				Dockerfile: "Dockerfile",
				Repo:       "cubedb-test-builder",
				Tag:        "latest",
				BuildArgs:  buildArgs,
				BuildOptionsModifier: func(opts *build.ImageBuildOptions) {
					opts.Target = "builder"
				},
				PrintBuildLog: true,
			},
		},
		Started: false,
	})
	if err != nil {
		return testcontainers.FromDockerfile{}, fmt.Errorf("failed to build cubedb-test-builder: %w", err)
	}
	s.BuilderContainer = builder

	repo, tag, _ := strings.Cut(serverImage, ":")
	return testcontainers.FromDockerfile{
		Context:    buildContext,
		Dockerfile: "Dockerfile",
		Repo:       repo,
		Tag:        tag,
		KeepImage:  true,
		BuildArgs:  buildArgs,
		BuildOptionsModifier: func(opts *build.ImageBuildOptions) {
			opts.Target = "runtime"
		},
		PrintBuildLog: true,
	}, nil
}

func imageExists(ctx context.Context, imageName string) (bool, error) {
	cli, err := client.NewClientWithOpts(client.FromEnv, client.WithAPIVersionNegotiation())
	if err != nil {
		return false, err
	}
	defer cli.Close()

	images, err := cli.ImageList(ctx, image.ListOptions{})
	if err != nil {
		return false, err
	}
	for _, img := range images {
		for _, tag := range img.RepoTags {
			if tag == imageName {
				return true, nil
			}
		}
	}
	return false, nil
}
