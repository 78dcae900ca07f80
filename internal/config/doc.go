// Package config loads fsroute server configuration.
//
// Configuration is layered. Each layer overrides the one before it:
//
//  1. Built-in defaults (see Defaults)
//  2. A config file: the explicit path, FSROUTE_CONFIG, or the first of
//     ./fsroute.yaml, ./fsroute.yml, ./fsroute.toml, ./fsroute.json
//  3. Environment variables (APP_HOST, APP_PORT, LOG_LEVEL, APP_ENV, ...)
//  4. _file references, which read secrets from mounted files
//  5. Validation
//
// # Configuration File Structure
//
//	env: production
//	server:
//	  host: 0.0.0.0
//	  port: 3000
//	  shutdown_timeout: 10s
//	routes:
//	  dir: app
//	static:
//	  dir: public
//	  s3:
//	    bucket: my-assets
//	    region: eu-west-1
//	rate_limit:
//	  enabled: true
//	  db: postgres://localhost/fsroute
//	log:
//	  level: info
//	  format: json
//
// # Usage
//
//	cfg, err := config.Load("")
//	if err != nil {
//	    log.Fatal(err)
//	}
//
//	fmt.Println("Listening on", cfg.Addr())
package config
