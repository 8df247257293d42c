package solbc

import (
	"encoding/json"
	"errors"
	"fmt"
	"testing"

	"github.com/gagliardetto/solana-go/rpc/jsonrpc"
	"github.com/stretchr/testify/assert"
	"go.uber.org/zap"
)

type codedError struct{ code int }

func (e codedError) Error() string  { return fmt.Sprintf("coded %d", e.code) }
func (e codedError) ErrorCode() int { return e.code }

func TestCustomCode(t *testing.T) {
	ea := NewErrorAnalyzer(zap.NewNop())

	tests := []struct {
		name   string
		err    error
		code   int
		wantOK bool
	}{
		{name: "nil", err: nil, code: NoErrorCode},
		{name: "plain error", err: errors.New("connection refused"), code: NoErrorCode},
		{name: "error code interface", err: fmt.Errorf("wrapped: %w", codedError{code: 312}), code: 312, wantOK: true},
		{
			name: "preflight err payload",
			err: &jsonrpc.RPCError{
				Code:    -32002,
				Message: "Transaction simulation failed",
				Data: map[string]interface{}{
					"err": map[string]interface{}{
						"InstructionError": []interface{}{float64(2), map[string]interface{}{"Custom": json.Number("311")}},
					},
				},
			},
			code:   311,
			wantOK: true,
		},
		{
			name: "custom code from logs",
			err: fmt.Errorf("send: %w", &jsonrpc.RPCError{
				Code: -32002,
				Data: map[string]interface{}{
					"logs": []interface{}{
						"Program cndyAnrLdpjq1Ssp1z8xxDsB8dxe7u4HL5Nxi2K5WXZ invoke [1]",
						"Program cndyAnrLdpjq1Ssp1z8xxDsB8dxe7u4HL5Nxi2K5WXZ failed: custom program error: 0x135",
					},
				},
			}),
			code:   309,
			wantOK: true,
		},
		{
			name: "anchor log",
			err: &jsonrpc.RPCError{
				Data: map[string]interface{}{
					"logs": []interface{}{
						"Program log: AnchorError occurred. Error Code: CandyMachineEmpty. Error Number: 311. Error Message: Candy machine is empty.",
					},
				},
			},
			code:   311,
			wantOK: true,
		},
		{
			name:   "rpc error without data",
			err:    &jsonrpc.RPCError{Code: -32005, Message: "node is behind"},
			code:   NoErrorCode,
			wantOK: false,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			code, ok := ea.CustomCode(tt.err)
			assert.Equal(t, tt.wantOK, ok)
			assert.Equal(t, tt.code, code)
		})
	}
}

func TestCustomCodeFromPayload(t *testing.T) {
	code, ok := CustomCodeFromPayload(map[string]interface{}{
		"InstructionError": []interface{}{0, map[string]interface{}{"Custom": float64(312)}},
	})
	assert.True(t, ok)
	assert.Equal(t, 312, code)

	_, ok = CustomCodeFromPayload("AccountNotFound")
	assert.False(t, ok)

	_, ok = CustomCodeFromPayload(map[string]interface{}{
		"InstructionError": []interface{}{0, "InvalidAccountData"},
	})
	assert.False(t, ok)
}

func TestDescribePayload(t *testing.T) {
	assert.Empty(t, DescribePayload(nil))
	assert.Equal(t, "custom program error: 0x137", DescribePayload(map[string]interface{}{
		"InstructionError": []interface{}{1, map[string]interface{}{"Custom": 311}},
	}))
	assert.Equal(t, "BlockhashNotFound", DescribePayload("BlockhashNotFound"))
	assert.Equal(t, `{"InsufficientFundsForRent":{"account_index":0}}`, DescribePayload(map[string]interface{}{
		"InsufficientFundsForRent": map[string]interface{}{"account_index": 0},
	}))
}

func TestParseAnchorErrorLog(t *testing.T) {
	ea := NewErrorAnalyzer(zap.NewNop())
	got := ea.parseAnchorErrorLog("Program log: AnchorError occurred. Error Code: InstructionFallbackNotFound. Error Number: 101. Error Message: Fallback functions are not supported.")
	assert.Equal(t, AnchorError{Code: 101, Name: "InstructionFallbackNotFound", Msg: "Fallback functions are not supported"}, got)
}
