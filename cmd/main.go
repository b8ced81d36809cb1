/*
Copyright 2026.

Licensed under the Apache License, Version 2.0 (the "License");
you may not use this file except in compliance with the License.
You may obtain a copy of the License at

    http://www.apache.org/licenses/LICENSE-2.0

Unless required by applicable law or agreed to in writing, software
distributed under the License is distributed on an "AS IS" BASIS,
WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
See the License for the specific language governing permissions and
limitations under the License.
*/

package main

import (
	"context"
	"crypto/tls"
	"flag"
	"os"

	// Import all Kubernetes client auth plugins (e.g. Azure, GCP, OIDC, etc.)
	// to ensure that exec-entrypoint and run can make use of them.
	_ "k8s.io/client-go/plugin/pkg/client/auth"

	"go.elastic.co/ecszap"
	uberzap "go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"k8s.io/apimachinery/pkg/runtime"
	utilruntime "k8s.io/apimachinery/pkg/util/runtime"
	clientgoscheme "k8s.io/client-go/kubernetes/scheme"
	ctrl "sigs.k8s.io/controller-runtime"
	"sigs.k8s.io/controller-runtime/pkg/cache"
	"sigs.k8s.io/controller-runtime/pkg/healthz"
	"sigs.k8s.io/controller-runtime/pkg/log/zap"
	"sigs.k8s.io/controller-runtime/pkg/metrics/filters"
	metricsserver "sigs.k8s.io/controller-runtime/pkg/metrics/server"
	"sigs.k8s.io/controller-runtime/pkg/webhook"

	ipadnsv1alpha1 "github.com/golgoth31/ipa-dns-operator/api/v1alpha1"
	"github.com/golgoth31/ipa-dns-operator/internal/adapter"
	"github.com/golgoth31/ipa-dns-operator/internal/config"
	"github.com/golgoth31/ipa-dns-operator/internal/controller"
	"github.com/golgoth31/ipa-dns-operator/internal/controller/binding"
	"github.com/golgoth31/ipa-dns-operator/internal/controller/startup"
	"github.com/golgoth31/ipa-dns-operator/internal/credentials"
	"github.com/golgoth31/ipa-dns-operator/internal/inventory"
	"github.com/golgoth31/ipa-dns-operator/internal/ipa"
	"github.com/golgoth31/ipa-dns-operator/internal/mcp"
	"github.com/golgoth31/ipa-dns-operator/internal/resolver"
	"github.com/golgoth31/ipa-dns-operator/internal/version"
	webhookv1alpha1 "github.com/golgoth31/ipa-dns-operator/internal/webhook/v1alpha1"
	"github.com/golgoth31/ipa-dns-operator/internal/webserver"
	// +kubebuilder:scaffold:imports
)

var (
	scheme   = runtime.NewScheme()
	setupLog = ctrl.Log.WithName("setup")
)

func init() {
	utilruntime.Must(clientgoscheme.AddToScheme(scheme))

	utilruntime.Must(ipadnsv1alpha1.AddToScheme(scheme))
	// +kubebuilder:scaffold:scheme
}

// nolint:gocyclo
func main() {
	var metricsAddr string
	var metricsCertPath, metricsCertName, metricsCertKey string
	var webhookCertPath, webhookCertName, webhookCertKey string
	var enableLeaderElection bool
	var probeAddr string
	var webAddr string
	var secureMetrics bool
	var enableHTTP2 bool
	var configPath string
	var logFormat string
	var enableMCP bool
	var mcpTransport string
	var mcpAddr string
	var tlsOpts []func(*tls.Config)
	flag.StringVar(&metricsAddr, "metrics-bind-address", "0", "The address the metrics endpoint binds to. "+
		"Use :8443 for HTTPS or :8080 for HTTP, or leave as 0 to disable the metrics service.")
	flag.StringVar(&webAddr, "web-bind-address", ":8090",
		"The address the read-only bindings API binds to. Leave empty to disable it.")
	flag.StringVar(&configPath, "config", config.DefaultConfigPath,
		"Path to the operator configuration file.")
	flag.StringVar(&probeAddr, "health-probe-bind-address", ":8081", "The address the probe endpoint binds to.")
	flag.BoolVar(&enableLeaderElection, "leader-elect", false,
		"Enable leader election for controller manager. "+
			"Enabling this will ensure there is only one active controller manager.")
	flag.BoolVar(&secureMetrics, "metrics-secure", true,
		"If set, the metrics endpoint is served securely via HTTPS. Use --metrics-secure=false to use HTTP instead.")
	var webhookPort int
	flag.IntVar(&webhookPort, "webhook-port", 9443, "The port the webhook server binds to.")
	flag.StringVar(&webhookCertPath, "webhook-cert-path", "", "The directory that contains the webhook certificate.")
	flag.StringVar(&webhookCertName, "webhook-cert-name", "tls.crt", "The name of the webhook certificate file.")
	flag.StringVar(&webhookCertKey, "webhook-cert-key", "tls.key", "The name of the webhook key file.")
	flag.StringVar(&metricsCertPath, "metrics-cert-path", "",
		"The directory that contains the metrics server certificate.")
	flag.StringVar(&metricsCertName, "metrics-cert-name", "tls.crt", "The name of the metrics server certificate file.")
	flag.StringVar(&metricsCertKey, "metrics-cert-key", "tls.key", "The name of the metrics server key file.")
	flag.BoolVar(&enableHTTP2, "enable-http2", false,
		"If set, HTTP/2 will be enabled for the metrics and webhook servers")
	flag.StringVar(&logFormat, "log-format", "console",
		"The log format: 'console' or 'ecs' (Elastic Common Schema JSON).")
	flag.BoolVar(&enableMCP, "enable-mcp", false,
		"If set, the MCP (Model Context Protocol) server will be enabled for AI assistant integration.")
	flag.StringVar(&mcpTransport, "mcp-transport", "stdio",
		"The transport to use for the MCP server: 'stdio', 'streamable-http' or 'web' (mounted on /mcp of the web server).")
	flag.StringVar(&mcpAddr, "mcp-bind-address", ":8091",
		"The address the MCP server binds to (only used when mcp-transport is 'streamable-http').")
	opts := zap.Options{
		Development: true,
		TimeEncoder: zapcore.ISO8601TimeEncoder,
	}
	opts.BindFlags(flag.CommandLine)
	flag.Parse()

	if logFormat == "ecs" {
		opts.Development = false
		opts.Encoder = zapcore.NewJSONEncoder(ecszap.ECSCompatibleEncoderConfig(uberzap.NewProductionEncoderConfig()))
		opts.ZapOpts = append(opts.ZapOpts, uberzap.WrapCore(ecszap.WrapCore))
	}
	ctrl.SetLogger(zap.New(zap.UseFlagOptions(&opts)))

	// Environment variables (Kubernetes Downward API)
	podName := os.Getenv("POD_NAME")
	podNamespace := os.Getenv("POD_NAMESPACE")

	setupLog.Info("ipa-dns-operator", "version", version.Version, "commit", version.Commit, "date", version.Date,
		"podName", podName, "podNamespace", podNamespace)

	// Load operator configuration from file, overlaid by the environment
	operatorConfig, err := config.Load(configPath)
	if err != nil {
		setupLog.Error(err, "failed to load configuration", "path", configPath)
		os.Exit(1)
	}
	if podNamespace != "" && os.Getenv(config.EnvNamespace) == "" {
		operatorConfig.Namespace = podNamespace
	}
	setupLog.Info("loaded configuration", "path", configPath, "config", operatorConfig.LogSummary())

	// if the enable-http2 flag is false (the default), http/2 should be disabled
	// due to its vulnerabilities. More specifically, disabling http/2 will
	// prevent from being vulnerable to the HTTP/2 Stream Cancellation and
	// Rapid Reset CVEs. For more information see:
	// - https://github.com/advisories/GHSA-qppj-fm5r-hxr3
	// - https://github.com/advisories/GHSA-4374-p667-p6c8
	disableHTTP2 := func(c *tls.Config) {
		setupLog.Info("disabling http/2")
		c.NextProtos = []string{"http/1.1"}
	}

	if !enableHTTP2 {
		tlsOpts = append(tlsOpts, disableHTTP2)
	}

	// Initial webhook TLS options
	webhookTLSOpts := tlsOpts
	webhookServerOptions := webhook.Options{
		TLSOpts: webhookTLSOpts,
		Port:    webhookPort,
	}

	if len(webhookCertPath) > 0 {
		setupLog.Info("Initializing webhook certificate watcher using provided certificates",
			"webhook-cert-path", webhookCertPath, "webhook-cert-name", webhookCertName, "webhook-cert-key", webhookCertKey)

		webhookServerOptions.CertDir = webhookCertPath
		webhookServerOptions.CertName = webhookCertName
		webhookServerOptions.KeyName = webhookCertKey
	}

	webhookServer := webhook.NewServer(webhookServerOptions)

	metricsServerOptions := metricsserver.Options{
		BindAddress:   metricsAddr,
		SecureServing: secureMetrics,
		TLSOpts:       tlsOpts,
	}

	if secureMetrics {
		// FilterProvider is used to protect the metrics endpoint with authn/authz.
		metricsServerOptions.FilterProvider = filters.WithAuthenticationAndAuthorization
	}

	if len(metricsCertPath) > 0 {
		setupLog.Info("Initializing metrics certificate watcher using provided certificates",
			"metrics-cert-path", metricsCertPath, "metrics-cert-name", metricsCertName, "metrics-cert-key", metricsCertKey)

		metricsServerOptions.CertDir = metricsCertPath
		metricsServerOptions.CertName = metricsCertName
		metricsServerOptions.KeyName = metricsCertKey
	}

	cacheOptions := cache.Options{}
	if len(operatorConfig.WatchNamespaces) > 0 {
		cacheOptions.DefaultNamespaces = make(map[string]cache.Config, len(operatorConfig.WatchNamespaces))
		for _, ns := range operatorConfig.WatchNamespaces {
			cacheOptions.DefaultNamespaces[ns] = cache.Config{}
		}
	}

	mgr, err := ctrl.NewManager(ctrl.GetConfigOrDie(), ctrl.Options{
		Scheme:                 scheme,
		Cache:                  cacheOptions,
		Metrics:                metricsServerOptions,
		WebhookServer:          webhookServer,
		HealthProbeBindAddress: probeAddr,
		LeaderElection:         enableLeaderElection,
		LeaderElectionID:       "4c1f0a2e.ipadns.my.domain",
	})
	if err != nil {
		setupLog.Error(err, "unable to start manager")
		os.Exit(1)
	}

	// Add field indexer for DNSRecord service references
	if err := mgr.GetFieldIndexer().IndexField(
		context.Background(),
		&ipadnsv1alpha1.DNSRecord{},
		controller.IndexFieldServiceRef,
		controller.ServiceRefIndexer,
	); err != nil {
		setupLog.Error(err, "unable to create field indexer", "field", controller.IndexFieldServiceRef)
		os.Exit(1)
	}

	ipaClient := ipa.NewClient(operatorConfig.IPA.Server,
		ipa.WithTimeout(operatorConfig.IPA.RequestTimeout.Duration()),
		ipa.WithInsecureSkipVerify(operatorConfig.IPA.InsecureSkipVerify),
		ipa.WithAPIVersion(operatorConfig.IPA.APIVersion),
	)
	// The credentials Secret is read through the API reader so that Secrets
	// are never cached cluster-wide.
	credentialProvider := credentials.NewSecretProvider(
		mgr.GetAPIReader(),
		operatorConfig.SecretNamespace(),
		operatorConfig.Credentials.SecretName,
	)
	engine := binding.NewEngine(binding.Deps{
		Resolver:    resolver.NewServiceIPResolver(mgr.GetClient()),
		Credentials: credentialProvider,
		Sessions:    ipaClient,
		Classifier:  operatorConfig.Classifier(),
	})
	keys := adapter.NewKeys(operatorConfig.AnnotationPrefix)

	if operatorConfig.Sources.DNSRecord.Enabled {
		if err := controller.NewDNSRecordReconciler(
			mgr.GetClient(),
			mgr.GetScheme(),
			engine,
		).SetupWithManager(mgr); err != nil {
			setupLog.Error(err, "unable to create controller", "controller", "DNSRecord")
			os.Exit(1)
		}

		// nolint:goconst
		if os.Getenv("ENABLE_WEBHOOKS") != "false" {
			if err := webhookv1alpha1.SetupDNSRecordWebhookWithManager(mgr); err != nil {
				setupLog.Error(err, "unable to create webhook", "webhook", "DNSRecord")
				os.Exit(1)
			}
		}
	}

	if operatorConfig.Sources.Service.Enabled {
		if err := controller.NewServiceReconciler(
			mgr.GetClient(),
			mgr.GetScheme(),
			engine,
			keys,
		).SetupWithManager(mgr); err != nil {
			setupLog.Error(err, "unable to create controller", "controller", "Service")
			os.Exit(1)
		}
	}

	// Add runnable logging whether the directory accepts our credentials
	if err := mgr.Add(startup.NewBackendProbeRunnable(
		credentialProvider,
		ipaClient,
		ipaClient.BaseURL(),
	)); err != nil {
		setupLog.Error(err, "unable to add backend probe runnable")
		os.Exit(1)
	}
	// +kubebuilder:scaffold:builder

	if err := mgr.AddHealthzCheck("healthz", healthz.Ping); err != nil {
		setupLog.Error(err, "unable to set up health check")
		os.Exit(1)
	}
	if err := mgr.AddReadyzCheck("readyz", healthz.Ping); err != nil {
		setupLog.Error(err, "unable to set up ready check")
		os.Exit(1)
	}

	// Derive a cancellable context from the signal handler so that fatal
	// errors in background servers (web, MCP) can trigger a clean shutdown.
	signalCtx := ctrl.SetupSignalHandler()
	ctx, cancel := context.WithCancel(signalCtx)
	defer cancel()

	lister := inventory.NewLister(mgr.GetClient(), keys)

	var mcpServer *mcp.Server
	if enableMCP {
		mcpServer = mcp.New(lister)
	}

	var webServer *webserver.Server
	if webAddr != "" {
		webServer = webserver.New(webserver.Config{Address: webAddr}, lister, nil)
		if mcpServer != nil && mcpTransport == "web" {
			webServer.MountHandler("/mcp", mcpServer.Handler())
		}

		go func() {
			setupLog.Info("starting web server", "address", webAddr)
			if err := webServer.Start(); err != nil {
				setupLog.Error(err, "web server failed, initiating shutdown")
				cancel()
			}
		}()
	}

	if mcpServer != nil {
		switch mcpTransport {
		case "stdio":
			go func() {
				setupLog.Info("starting MCP server", "transport", "stdio")
				if err := mcpServer.ServeStdio(); err != nil {
					setupLog.Error(err, "MCP server failed, initiating shutdown")
					cancel()
				}
			}()
		case "streamable-http":
			go func() {
				setupLog.Info("starting MCP server", "transport", "streamable-http", "address", mcpAddr)
				if err := mcpServer.ServeStreamableHTTP(mcpAddr); err != nil {
					setupLog.Error(err, "MCP server failed, initiating shutdown")
					cancel()
				}
			}()
		case "web":
			if webServer == nil {
				setupLog.Error(nil, "MCP transport 'web' requires --web-bind-address")
				os.Exit(1)
			}
			setupLog.Info("serving MCP on the web server", "path", "/mcp")
		default:
			setupLog.Error(nil, "unknown MCP transport", "transport", mcpTransport)
			os.Exit(1)
		}
	}

	setupLog.Info("starting manager")
	if err := mgr.Start(ctx); err != nil {
		setupLog.Error(err, "problem running manager")
		os.Exit(1)
	}

	if webServer != nil {
		if err := webServer.Shutdown(context.Background()); err != nil {
			setupLog.Error(err, "error shutting down web server")
		}
	}

	if mcpServer != nil {
		if err := mcpServer.Shutdown(context.Background()); err != nil {
			setupLog.Error(err, "error shutting down MCP server")
		}
	}
}
