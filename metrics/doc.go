// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

/*
Package metrics exposes Prometheus metrics for the service at /metrics.

	vouchers_http_requests_total{route,code}
	vouchers_http_request_duration_seconds{route}
	vouchers_transitions_total{target,result}
	vouchers_import_rows_total{outcome}

Routes are labelled by their ServeMux pattern, never by the raw path, so
voucher IDs do not create new series.
*/
package metrics
