// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

/*
Package cliparse handles command-line argument parsing and configuration.

# Configuration

ParseFlags returns a Config struct with all settings:

	cfg, err := cliparse.ParseFlags(os.Args[1:])

A .env file in the working directory is loaded first (via godotenv) when
it exists. Variables already set in the process environment win.

# CLI Flags

	-p               Server port
	-d               Database URL or sqlite file path
	-t               Database type (sqlite or postgres)
	-images          Directory for uploaded voucher images
	-base-url        Public base URL used in image links
	-brands          Brand catalog file (JSON or HuJSON)
	-cooldown        Minimum time between status changes of one voucher
	-session-secret  Session token secret

# Environment Variables

Flags fall back to environment variables:

	PORT                 → -p (default 3318)
	DATABASE_URL         → -d (default vouchers.db for sqlite)
	DATABASE_TYPE        → -t (default sqlite)
	IMAGE_DIR            → -images (default data/images)
	PUBLIC_BASE_URL      → -base-url (default http://localhost:<port>)
	BRANDS_FILE          → -brands
	TRANSITION_COOLDOWN  → -cooldown (default 3s, 0 disables)
	SESSION_SECRET       → -session-secret

Environment only:

	SESSION_TTL      login session lifetime (default 168h)
	MAX_IMAGE_BYTES  upload size limit (default 5 MiB)
	LOG_LEVEL        debug, info, warn, error (default info)
	LOG_FORMAT       text or json (default text)

CLI flags take precedence over environment variables.

# Validation

ParseFlags returns an error when:

  - SESSION_SECRET is missing
  - DATABASE_TYPE is postgres and no DATABASE_URL is given
  - a numeric or duration value does not parse
*/
package cliparse
