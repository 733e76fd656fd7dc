package twfy

import "go.opentelemetry.io/otel"

var tracer = otel.Tracer("pmqwatch.lib.scrapers.twfy")
