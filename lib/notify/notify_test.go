package notify

import (
	"context"
	"io"
	"log"
	"testing"

	"github.com/stretchr/testify/require"
	"github.com/testcontainers/testcontainers-go"
	"github.com/testcontainers/testcontainers-go/wait"
)

func TestDisabledNotifier(t *testing.T) {
	n := NewNotifier(SmtpConfig{})
	require.False(t, n.Enabled())
	require.NoError(t, n.Send(context.Background(), "subject", "body"))
}

func TestSendRunSummary(t *testing.T) {
	if testing.Short() {
		t.Skip("requires docker")
	}

	// suppress logging
	testcontainers.Logger = log.New(io.Discard, "", 0)

	smtp, err := testcontainers.GenericContainer(
		context.Background(),
		testcontainers.GenericContainerRequest{
			Started: true,
			ContainerRequest: testcontainers.ContainerRequest{
				Image:        "haravich/fake-smtp-server",
				ExposedPorts: []string{"1025:1025", "1090:1080"},
				WaitingFor:   wait.ForLog("smtp://0.0.0.0:1025"),
			},
		},
	)
	if err != nil {
		t.Fatal(err)
	}
	defer smtp.Terminate(context.Background())

	n := NewNotifier(SmtpConfig{
		Server:       "localhost",
		Port:         1025,
		EmailAddress: "pmqwatch@example.com",
		Recipient:    "analyst@example.com",
	})
	require.True(t, n.Enabled())
	require.NoError(t, n.Send(context.Background(), "pmqwatch run abc123", "Editions fetched: 3"))
}
