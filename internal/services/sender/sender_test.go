package services

import (
	"errors"
	"io"
	"log/slog"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"

	"github.com/ouedraogodev/pronos226/internal/lib/smtp"
)

type MockTransport struct {
	mock.Mock
}

func (m *MockTransport) Connect() (smtp.Client, error) {
	args := m.Called()
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(smtp.Client), args.Error(1)
}

func (m *MockTransport) GetSMTPUser() string {
	args := m.Called()
	return args.String(0)
}

type MockSMTPClient struct {
	mock.Mock
}

func (m *MockSMTPClient) Mail(from string) error {
	args := m.Called(from)
	return args.Error(0)
}

func (m *MockSMTPClient) Rcpt(to string) error {
	args := m.Called(to)
	return args.Error(0)
}

func (m *MockSMTPClient) Data() (io.WriteCloser, error) {
	args := m.Called()
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(io.WriteCloser), args.Error(1)
}

func (m *MockSMTPClient) Close() error {
	args := m.Called()
	return args.Error(0)
}

func (m *MockSMTPClient) Quit() error {
	args := m.Called()
	return args.Error(0)
}

type MockSMTPWriter struct {
	mock.Mock
	written []byte
}

func (m *MockSMTPWriter) Write(p []byte) (n int, err error) {
	args := m.Called(p)
	m.written = append(m.written, p...)
	return args.Int(0), args.Error(1)
}

func (m *MockSMTPWriter) Close() error {
	args := m.Called()
	return args.Error(0)
}

func newNoopLogger() *slog.Logger {
	h := slog.NewTextHandler(io.Discard, &slog.HandlerOptions{})
	return slog.New(h)
}

func TestSenderService_SendClaimDecision(t *testing.T) {
	approvedBody := []byte(`{"claim_id":"c1","email":"test@example.com","full_name":"Test User","target_tier":"vip","period":"monthly","status":"approved","decided_at":"2025-05-20T12:00:00Z"}`)
	rejectedBody := []byte(`{"claim_id":"c2","email":"test@example.com","full_name":"Test User","target_tier":"standard","period":"yearly","status":"rejected","note":"capture illisible","decided_at":"2025-05-20T12:00:00Z"}`)

	tests := []struct {
		name          string
		body          []byte
		setupMocks    func(*MockTransport) *MockSMTPWriter
		wantInBody    string
		expectedError bool
		errorMessage  string
	}{
		{
			name: "success - approved claim email",
			body: approvedBody,
			setupMocks: func(t *MockTransport) *MockSMTPWriter {
				mockClient := new(MockSMTPClient)
				mockWriter := new(MockSMTPWriter)

				t.On("GetSMTPUser").Return("noreply@pronos226.bf")
				t.On("Connect").Return(mockClient, nil).Once()
				mockClient.On("Mail", "noreply@pronos226.bf").Return(nil).Once()
				mockClient.On("Rcpt", "test@example.com").Return(nil).Once()
				mockClient.On("Data").Return(mockWriter, nil).Once()
				mockWriter.On("Write", mock.AnythingOfType("[]uint8")).Return(100, nil).Once()
				mockWriter.On("Close").Return(nil).Once()
				mockClient.On("Quit").Return(nil).Once()
				mockClient.On("Close").Return(nil).Once()
				return mockWriter
			},
			wantInBody:    "est maintenant actif",
			expectedError: false,
		},
		{
			name: "success - rejected claim email carries the note",
			body: rejectedBody,
			setupMocks: func(t *MockTransport) *MockSMTPWriter {
				mockClient := new(MockSMTPClient)
				mockWriter := new(MockSMTPWriter)

				t.On("GetSMTPUser").Return("noreply@pronos226.bf")
				t.On("Connect").Return(mockClient, nil).Once()
				mockClient.On("Mail", "noreply@pronos226.bf").Return(nil).Once()
				mockClient.On("Rcpt", "test@example.com").Return(nil).Once()
				mockClient.On("Data").Return(mockWriter, nil).Once()
				mockWriter.On("Write", mock.AnythingOfType("[]uint8")).Return(100, nil).Once()
				mockWriter.On("Close").Return(nil).Once()
				mockClient.On("Quit").Return(nil).Once()
				mockClient.On("Close").Return(nil).Once()
				return mockWriter
			},
			wantInBody:    "Motif : capture illisible",
			expectedError: false,
		},
		{
			name: "invalid JSON",
			body: []byte(`invalid json`),
			setupMocks: func(_ *MockTransport) *MockSMTPWriter {
				return nil
			},
			expectedError: true,
			errorMessage:  "error unmarshalling message",
		},
		{
			name: "SMTP connection error",
			body: approvedBody,
			setupMocks: func(t *MockTransport) *MockSMTPWriter {
				t.On("GetSMTPUser").Return("noreply@pronos226.bf")
				t.On("Connect").Return(nil, errors.New("connection error")).Once()
				return nil
			},
			expectedError: true,
			errorMessage:  "connection error",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			transport := new(MockTransport)
			service := NewSenderService(newNoopLogger(), transport)

			writer := tt.setupMocks(transport)

			err := service.SendClaimDecision(tt.body)

			if tt.expectedError {
				assert.Error(t, err)
				assert.Contains(t, err.Error(), tt.errorMessage)
			} else {
				assert.NoError(t, err)
				if tt.wantInBody != "" {
					assert.Contains(t, string(writer.written), tt.wantInBody)
				}
			}

			transport.AssertExpectations(t)
		})
	}
}

func TestSenderService_SMTPErrorHandling(t *testing.T) {
	body := []byte(`{"claim_id":"c1","email":"test@example.com","full_name":"Test User","target_tier":"vip","period":"monthly","status":"approved","decided_at":"2025-05-20T12:00:00Z"}`)

	tests := []struct {
		name         string
		setupMocks   func(*MockTransport)
		errorMessage string
	}{
		{
			name: "SMTP Mail error",
			setupMocks: func(t *MockTransport) {
				mockClient := new(MockSMTPClient)

				t.On("GetSMTPUser").Return("noreply@pronos226.bf")
				t.On("Connect").Return(mockClient, nil).Once()
				mockClient.On("Mail", "noreply@pronos226.bf").Return(errors.New("mail error")).Once()
				mockClient.On("Close").Return(nil).Once()
			},
			errorMessage: "mail error",
		},
		{
			name: "SMTP Rcpt error",
			setupMocks: func(t *MockTransport) {
				mockClient := new(MockSMTPClient)

				t.On("GetSMTPUser").Return("noreply@pronos226.bf")
				t.On("Connect").Return(mockClient, nil).Once()
				mockClient.On("Mail", "noreply@pronos226.bf").Return(nil).Once()
				mockClient.On("Rcpt", "test@example.com").Return(errors.New("rcpt error")).Once()
				mockClient.On("Close").Return(nil).Once()
			},
			errorMessage: "rcpt error",
		},
		{
			name: "SMTP Data error",
			setupMocks: func(t *MockTransport) {
				mockClient := new(MockSMTPClient)

				t.On("GetSMTPUser").Return("noreply@pronos226.bf")
				t.On("Connect").Return(mockClient, nil).Once()
				mockClient.On("Mail", "noreply@pronos226.bf").Return(nil).Once()
				mockClient.On("Rcpt", "test@example.com").Return(nil).Once()
				mockClient.On("Data").Return(nil, errors.New("data error")).Once()
				mockClient.On("Close").Return(nil).Once()
			},
			errorMessage: "data error",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			transport := new(MockTransport)
			service := NewSenderService(newNoopLogger(), transport)

			tt.setupMocks(transport)

			err := service.SendClaimDecision(body)

			assert.Error(t, err)
			assert.Contains(t, err.Error(), tt.errorMessage)

			transport.AssertExpectations(t)
		})
	}
}
