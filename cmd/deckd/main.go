package main

import (
	"context"
	"flag"
	"log"
	"net/http"
	"time"

	"github.com/labstack/echo/v4"
	"github.com/labstack/echo/v4/middleware"
	apierr "github.com/opsdeck/opsdeck/api/types/errors"
	kpool "github.com/opsdeck/opsdeck/pkg/conn/db/postgres/pool"
	kcs "github.com/opsdeck/opsdeck/pkg/configs/server"
	credpg "github.com/opsdeck/opsdeck/pkg/domain/credential/db/postgres"
	k8sjob "github.com/opsdeck/opsdeck/pkg/domain/jobrun/k8s"
	stackpg "github.com/opsdeck/opsdeck/pkg/domain/stack/db/postgres"
	"github.com/opsdeck/opsdeck/pkg/utils/echoutil"
	"github.com/opsdeck/opsdeck/pkg/utils/filewatch"
	"github.com/opsdeck/opsdeck/pkg/utils/kubeutil"

	"github.com/opsdeck/opsdeck/cmd/deckd/handlers"
)

func main() {

	configPath := flag.String("config-path", "", "server config path")
	loglevel := flag.String("loglevel", "info", "log level. debug|info|warn|error|off")
	pcert := flag.String("cert", "", "certification file for TLS")
	pkey := flag.String("certkey", "", "key of certification file for TLS")
	flag.Parse()

	e := echo.New()
	e.Pre(middleware.AddTrailingSlash())

	// set log
	echoutil.SetLevel(e, *loglevel)
	e.HTTPErrorHandler = func(err error, ctx echo.Context) {
		e.DefaultHTTPErrorHandler(err, ctx)
		e.Logger.Error(err)
	}
	e.Use(echoutil.LogHandlerFunc)

	// read configfile
	conf, err := kcs.LoadServerConfig(*configPath)
	if err != nil {
		log.Fatalf("can not read configuration: %s", err)
	}
	e.Server.IdleTimeout = conf.StreamIdleTimeout.Duration()

	{
		ctx, cancel, err := filewatch.UntilModifyContext(context.Background(), *configPath)
		if err != nil {
			log.Fatalf("can not watch configuration: %s", err)
		}
		defer cancel()
		context.AfterFunc(ctx, func() {
			log.Println("config file is updated. quit to restart server.")
			graceful, cancel := context.WithTimeout(context.Background(), 15*time.Second)
			defer cancel()
			if err := e.Shutdown(graceful); err != nil {
				log.Printf("error on shutdown by config update: %s", err)
			}
		})
	}

	ctx := context.Background()

	pool, err := kpool.Connect(ctx, conf.DBURI)
	if err != nil {
		log.Fatalf("can not connect to database: %s", err)
	}
	defer pool.Close()
	if err := stackpg.Init(ctx, pool); err != nil {
		log.Fatalf("can not prepare database: %s", err)
	}
	if err := credpg.Init(ctx, pool); err != nil {
		log.Fatalf("can not prepare database: %s", err)
	}
	dbStack := stackpg.New(pool)
	dbCredential := credpg.New(pool)

	clientset, err := kubeutil.NewClientset()
	if err != nil {
		log.Fatalf("can not connect to kubernetes: %s", err)
	}
	jobSource := k8sjob.New(clientset)

	// handlers
	scoped := "/api/projects/:projectId/clusters/:clusterId/namespaces/:namespace"
	{
		e.GET(scoped+"/jobs/", handlers.FindJobRunsHandler(jobSource, "namespace"))
		e.GET(scoped+"/jobs/stream/", handlers.StreamJobRunsHandler(jobSource, "namespace"))
	}

	{
		e.GET(scoped+"/stacks/", handlers.ListStacksHandler(dbStack, "projectId", "clusterId", "namespace"))
		e.POST(scoped+"/stacks/", handlers.CreateStackHandler(dbStack, "projectId", "clusterId", "namespace"))
		e.DELETE(scoped+"/stacks/:stackId/", handlers.DeleteStackHandler(dbStack, "projectId", "clusterId", "namespace", "stackId"))
	}

	{
		e.POST("/api/projects/:projectId/credentials/", handlers.CreateCredentialHandler(dbCredential))
		e.POST("/api/projects/:projectId/credentials/detect/", handlers.DetectCredentialHandler())
	}

	e.GET("/health/", func(c echo.Context) error {
		if err := pool.Ping(c.Request().Context()); err != nil {
			return apierr.ServiceUnavailable("database unreachable", err)
		}
		return c.NoContent(http.StatusOK)
	})

	log.Println("registered routes:")
	for _, r := range e.Routes() {
		log.Println(r.Method, r.Path)
	}

	cert, key := *pcert, *pkey
	if cert != "" && key != "" {
		e.Logger.Fatal(e.StartTLS(":"+conf.Port, cert, key))
	} else {
		e.Logger.Fatal(e.Start(":" + conf.Port))
	}
}
