package e2e

import (
	"context"
	"chat-relay/cypher"
	"strings"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/suite"
	healthpb "google.golang.org/grpc/health/grpc_health_v1"
)

type testChatSuite struct {
	BaseRelaySuite
}

func TestChatSuite(t *testing.T) {
	suite.Run(t, &testChatSuite{})
}

func (s *testChatSuite) TestTwoPeersChat() {
	// unique names so a shared relay does not confuse runs
	suffix := uuid.NewString()[:8]
	alexName, bobName := "alex_"+suffix, "bob_"+suffix

	alex := s.Join(alexName)
	defer alex.Close()
	alex.Await("its own CONNECTED", func(line string) bool {
		return strings.HasPrefix(line, "CONNECTED "+alexName+" ")
	})

	bob := s.Join(bobName)

	s.Run("Step 1: newcomer is announced", func() {
		alex.Await("CONNECTED bob", func(line string) bool {
			return strings.HasPrefix(line, "CONNECTED "+bobName+" ")
		})
	})

	s.Run("Step 2: message is relayed untouched", func() {
		payload := cypher.Base64{}.Encode("hello " + suffix)
		bob.Send("MSG " + payload)
		line := alex.Await("bob's MSG", func(line string) bool {
			return strings.HasPrefix(line, "MSG "+bobName+" ")
		})
		fields := strings.Fields(line)
		s.Require().Len(fields, 5)
		s.Require().Equal(payload, fields[4])
	})

	s.Run("Step 3: leaving is announced", func() {
		bob.Close()
		alex.Await("DISCONNECTED bob", func(line string) bool {
			return strings.HasPrefix(line, "DISCONNECTED "+bobName+" ")
		})
	})
}

func (s *testChatSuite) TestRelayReportsServing() {
	s.WithHealth("Check relay health", func(ctx context.Context, client healthpb.HealthClient) {
		resp, err := client.Check(ctx, &healthpb.HealthCheckRequest{Service: "chat.relay"})
		s.Require().NoError(err)
		s.Require().Equal(healthpb.HealthCheckResponse_SERVING, resp.GetStatus())
	})
}
