// Package pandora provides a client for Pandora's private tuner and web APIs.
//
// # Overview
//
// The web client talks to two services. The tuner JSON API handles login;
// the web REST API serves collections, stations, account and GraphQL data.
// This package implements both login protocols, CSRF token acquisition for
// the REST API, and typed wrappers for the endpoints.
//
// # Quick Start
//
//	import "github.com/jfmyers9/tuner/pkg/pandora"
//
//	client, err := pandora.Initialize(ctx, pandora.Config{
//	    Username: os.Getenv("TUNER_PANDORA_USERNAME"),
//	    Password: os.Getenv("TUNER_PANDORA_PASSWORD"),
//	})
//	if err != nil {
//	    log.Fatal(err)
//	}
//
//	playlists, err := client.Collections().SortedPlaylists(ctx, nil)
//
// # Authentication
//
// Login is a three step sequence run by client.Auth():
//
//  1. test.checkLicensing confirms the service is available in this region
//  2. auth.partnerLogin authenticates a device profile ("partner") and
//     returns an encrypted server timestamp used to sync the clock
//  3. auth.userLogin sends the user's credentials, Blowfish-encrypted with
//     the partner's key, and returns the user auth token
//
// Partner profiles are data. DefaultRegistry holds the known device
// profiles; LoadRegistryFile reads a replacement from YAML:
//
//	partners:
//	  android:
//	    username: "android"
//	    password: "..."
//	    device_model: "android-generic"
//	    version: "5"
//	    encrypt_key: "..."
//	    decrypt_key: "..."
//	    sync_header: 4
//
// The steps must run in order. UserLogin before a partner login fails with
// ErrSequence without making a request.
//
// # REST Requests
//
// Every REST call needs the user auth token and a CSRF token taken from the
// csrftoken cookie of the web origin. Initialize acquires both; Request
// refuses to send anything without them.
//
//	var out json.RawMessage
//	err := client.Request(ctx, "/api/v1/billing/infoV2", nil, nil, nil, &out)
//
// # Error Handling
//
// Failures are returned as *Error. Use errors.Is with the sentinel kinds:
//
//	_, err := client.Auth().Login(ctx, user, pass)
//	if errors.Is(err, pandora.ErrUserLogin) {
//	    var perr *pandora.Error
//	    if errors.As(err, &perr) && perr.Code == pandora.ErrCodeInvalidLogin {
//	        fmt.Println("wrong username or password")
//	    }
//	}
//
// The client never retries. Transport errors are wrapped and returned.
//
// # Thread Safety
//
// A Client is safe for concurrent use. Login steps are serialized and CSRF
// acquisition probes at most once.
package pandora
