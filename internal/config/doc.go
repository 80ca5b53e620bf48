// Package config provides configuration parsing for silk tooling.
//
// The configuration is stored in silk.json. Every field is optional;
// missing fields take their defaults.
//
// # Configuration File Structure
//
//	{
//	  "log": {
//	    "level": "debug",
//	    "format": "json"
//	  },
//	  "serve": {
//	    "host": "0.0.0.0",
//	    "port": 3000,
//	    "paintInterval": "16ms",
//	    "writeTimeout": "10s",
//	    "maxSessions": 100
//	  },
//	  "metrics": {
//	    "enabled": true,
//	    "path": "/metrics"
//	  },
//	  "replay": {
//	    "seed": 42,
//	    "runs": 100,
//	    "ops": 200,
//	    "groups": 3
//	  }
//	}
//
// # Usage
//
//	cfg, err := config.LoadFromWorkingDir()
//	if err != nil {
//	    log.Fatal(err)
//	}
//
//	fmt.Println("Listening on", cfg.Addr())
package config
