package solbc

import (
	"encoding/json"
	"errors"
	"fmt"
	"regexp"
	"strconv"
	"strings"

	"github.com/gagliardetto/solana-go/rpc/jsonrpc"
	"go.uber.org/zap"
)

// NoErrorCode marks an error payload that carries no custom program code.
const NoErrorCode = -1

// AnchorError represents an error from Anchor framework
type AnchorError struct {
	Code int    `json:"code"`
	Name string `json:"name"`
	Msg  string `json:"msg"`
}

// ErrorAnalyzer provides methods to analyze Solana transaction errors
type ErrorAnalyzer struct {
	logger *zap.Logger
}

// NewErrorAnalyzer creates a new ErrorAnalyzer instance
func NewErrorAnalyzer(logger *zap.Logger) *ErrorAnalyzer {
	return &ErrorAnalyzer{
		logger: logger.Named("error-analyzer"),
	}
}

var customErrorLog = regexp.MustCompile(`custom program error: (0x[0-9a-fA-F]+)`)

// CustomCode extracts a custom program error code from err. It understands
// preflight failures returned as *jsonrpc.RPCError (the "err" payload first,
// then the program logs) and values implementing interface{ ErrorCode() int }.
func (ea *ErrorAnalyzer) CustomCode(err error) (int, bool) {
	if err == nil {
		return NoErrorCode, false
	}

	var coded interface{ ErrorCode() int }
	if errors.As(err, &coded) {
		if code := coded.ErrorCode(); code != NoErrorCode {
			return code, true
		}
	}

	var rpcErr *jsonrpc.RPCError
	if !errors.As(err, &rpcErr) {
		return NoErrorCode, false
	}

	dataMap, ok := rpcErr.Data.(map[string]interface{})
	if !ok {
		return NoErrorCode, false
	}

	if code, ok := CustomCodeFromPayload(dataMap["err"]); ok {
		return code, true
	}

	logs, _ := dataMap["logs"].([]interface{})
	for _, logEntry := range logs {
		logStr, ok := logEntry.(string)
		if !ok {
			continue
		}
		if strings.Contains(logStr, "AnchorError occurred") {
			anchorErr := ea.parseAnchorErrorLog(logStr)
			ea.logger.Warn("Anchor error detected",
				zap.Int("code", anchorErr.Code),
				zap.String("name", anchorErr.Name),
				zap.String("message", anchorErr.Msg))
			if anchorErr.Code != 0 {
				return anchorErr.Code, true
			}
		}
		if m := customErrorLog.FindStringSubmatch(logStr); m != nil {
			if code, err := strconv.ParseInt(m[1], 0, 64); err == nil {
				return int(code), true
			}
		}
	}

	return NoErrorCode, false
}

// CustomCodeFromPayload extracts N from a transaction error payload shaped
// like {"InstructionError":[index,{"Custom":N}]}.
func CustomCodeFromPayload(payload interface{}) (int, bool) {
	errMap, ok := payload.(map[string]interface{})
	if !ok {
		return NoErrorCode, false
	}
	instrErr, ok := errMap["InstructionError"].([]interface{})
	if !ok || len(instrErr) < 2 {
		return NoErrorCode, false
	}
	detail, ok := instrErr[1].(map[string]interface{})
	if !ok {
		return NoErrorCode, false
	}
	custom, ok := detail["Custom"]
	if !ok {
		return NoErrorCode, false
	}
	return toInt(custom)
}

// DescribePayload renders a transaction error payload for logs and messages.
func DescribePayload(payload interface{}) string {
	if payload == nil {
		return ""
	}
	if code, ok := CustomCodeFromPayload(payload); ok {
		return fmt.Sprintf("custom program error: 0x%x", code)
	}
	if s, ok := payload.(string); ok {
		return s
	}
	b, err := json.Marshal(payload)
	if err != nil {
		return fmt.Sprintf("%v", payload)
	}
	return string(b)
}

func toInt(v interface{}) (int, bool) {
	switch n := v.(type) {
	case int:
		return n, true
	case int64:
		return int(n), true
	case uint64:
		return int(n), true
	case uint32:
		return int(n), true
	case float64:
		return int(n), true
	case json.Number:
		i, err := n.Int64()
		if err != nil {
			return NoErrorCode, false
		}
		return int(i), true
	default:
		i, err := strconv.ParseInt(fmt.Sprint(v), 10, 64)
		if err != nil {
			return NoErrorCode, false
		}
		return int(i), true
	}
}

// parseAnchorErrorLog parses an Anchor error log string
// Example: "Program log: AnchorError occurred. Error Code: InstructionFallbackNotFound. Error Number: 101. Error Message: Fallback functions are not supported."
func (ea *ErrorAnalyzer) parseAnchorErrorLog(logStr string) AnchorError {
	result := AnchorError{}

	if strings.Contains(logStr, "Error Number:") {
		parts := strings.Split(logStr, "Error Number:")
		if len(parts) > 1 {
			numParts := strings.Split(parts[1], ".")
			if len(numParts) > 0 {
				fmt.Sscanf(strings.TrimSpace(numParts[0]), "%d", &result.Code)
			}
		}
	}

	if strings.Contains(logStr, "Error Code:") {
		parts := strings.Split(logStr, "Error Code:")
		if len(parts) > 1 {
			nameParts := strings.Split(parts[1], ".")
			if len(nameParts) > 0 {
				result.Name = strings.TrimSpace(nameParts[0])
			}
		}
	}

	if strings.Contains(logStr, "Error Message:") {
		parts := strings.Split(logStr, "Error Message:")
		if len(parts) > 1 {
			result.Msg = strings.TrimSpace(strings.Split(parts[1], ".")[0])
		}
	}

	return result
}
