package telemetry

import (
	"bytes"
	"context"
	"testing"

	"github.com/stretchr/testify/require"
	"gitlab.com/yelinaung/expense-ledger/internal/config"
	"go.opentelemetry.io/otel"
)

func TestSetup_None(t *testing.T) {
	before := otel.GetTracerProvider()

	shutdown, err := Setup(context.Background(), &config.Config{OTelExporter: config.ExporterNone})
	require.NoError(t, err)
	require.NoError(t, shutdown(context.Background()))
	require.Equal(t, before, otel.GetTracerProvider())
}

func TestSetup_Stdout(t *testing.T) {
	var out bytes.Buffer
	shutdown, err := setup(context.Background(), &config.Config{
		OTelExporter:    config.ExporterStdout,
		OTelServiceName: "expense-ledger-test",
	}, &out)
	require.NoError(t, err)

	_, span := otel.Tracer("test").Start(context.Background(), "test-span")
	span.End()

	require.NoError(t, shutdown(context.Background()))
	require.Contains(t, out.String(), "test-span")
	require.Contains(t, out.String(), "expense-ledger-test")
}

func TestSetup_UnknownExporter(t *testing.T) {
	_, err := setup(context.Background(), &config.Config{OTelExporter: "carrier-pigeon"}, &bytes.Buffer{})
	require.Error(t, err)
	require.Contains(t, err.Error(), "carrier-pigeon")
}
