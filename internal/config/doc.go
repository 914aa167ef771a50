// Package config loads payment-frontend configuration.
//
// Settings come from three layers, each overriding the previous one:
// built-in defaults, an optional YAML file, and PAYFRONT_* environment
// variables. Command-line flags are applied on top by the CLI.
//
// # Configuration File Structure
//
//	server:
//	  addr: ":8080"
//	  sessionTTL: 2m
//	  dev: false
//	canister:
//	  id: bkyz2-fmaaa-aaaaa-qaaaq-cai
//	  host: http://127.0.0.1:4943
//	  timeout: 30s
//	  fetchRootKey: true
//	page:
//	  shell: ./index.html
//	  showConnect: false
//	log:
//	  level: info
//	  format: text
//
// # Usage
//
//	cfg, err := config.Load("payfront.yaml")
//	if err != nil {
//	    log.Fatal(err)
//	}
//	cfg.Log.Level = *levelFlag
//	if err := cfg.Validate(); err != nil {
//	    log.Fatal(err)
//	}
//
//	fmt.Println("Listening on", cfg.Server.Addr)
package config
