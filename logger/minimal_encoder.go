package logger

import (
	"fmt"
	"math"
	"strings"

	"go.uber.org/zap"
	"go.uber.org/zap/buffer"
	"go.uber.org/zap/zapcore"
)

// ANSI color codes for the console encoder. One calm palette, easy on eyes.
const (
	colorReset = "\x1b[0m"
	colorBold  = "\x1b[1m"

	colorFg      = "\x1b[38;5;223m" // soft beige for plain text
	colorTime    = "\x1b[38;5;107m" // mid green for timestamps
	colorName    = "\x1b[38;5;208m" // warm orange for component names
	colorValue   = "\x1b[38;5;108m" // bright green for field values
	colorKey     = "\x1b[38;5;65m"  // deep green for field keys
	colorWarn    = "\x1b[38;5;179m" // soft yellow
	colorWarnBg  = "\x1b[48;5;58m"
	colorError   = "\x1b[38;5;167m" // warm red
	colorErrorBg = "\x1b[48;5;52m"
)

// minimalEncoder implements a calm, compact console encoder.
// Format: "13:04:35  growth  Sampling complete  chains=4 draws=4000"
type minimalEncoder struct {
	zapcore.Encoder // Embed a base encoder for field serialization
	buf             *buffer.Buffer
}

func newMinimalEncoder() *minimalEncoder {
	// Create a base JSON encoder for field serialization (internal use only)
	baseEncoder := zapcore.NewJSONEncoder(zap.NewProductionEncoderConfig())

	return &minimalEncoder{
		Encoder: baseEncoder,
		buf:     buffer.NewPool().Get(),
	}
}

func (enc *minimalEncoder) Clone() zapcore.Encoder {
	return &minimalEncoder{
		Encoder: enc.Encoder.Clone(),
		buf:     buffer.NewPool().Get(),
	}
}

func (enc *minimalEncoder) EncodeEntry(ent zapcore.Entry, fields []zapcore.Field) (*buffer.Buffer, error) {
	final := buffer.NewPool().Get()

	// Time
	final.AppendString(colorTime)
	final.AppendString(ent.Time.Format("15:04:05"))
	final.AppendString(colorReset)

	// Level: only show for WARN/ERROR with bold + background
	if ent.Level != zapcore.InfoLevel && ent.Level != zapcore.DebugLevel {
		final.AppendString("  ")
		final.AppendString(levelColorString(ent.Level))
	}

	// Component name (abbreviated) for visual grouping
	if ent.LoggerName != "" {
		final.AppendString("  ")
		final.AppendString(colorName)
		final.AppendString(abbreviateName(ent.LoggerName))
		final.AppendString(colorReset)
	}

	// Message
	final.AppendString("  ")
	final.AppendString(colorFg)
	final.AppendString(ent.Message)
	final.AppendString(colorReset)

	// Fields as key=value; every field is emitted, none silently dropped
	if len(fields) > 0 {
		final.AppendString("  ")
		final.AppendString(formatFields(fields))
	}

	final.AppendString("\n")
	return final, nil
}

// levelColorString returns bold + colored + background for WARN/ERROR
func levelColorString(level zapcore.Level) string {
	switch level {
	case zapcore.WarnLevel:
		return colorBold + colorWarnBg + colorWarn + "WARN" + colorReset
	case zapcore.ErrorLevel:
		return colorBold + colorErrorBg + colorError + "ERROR" + colorReset
	case zapcore.DPanicLevel, zapcore.PanicLevel, zapcore.FatalLevel:
		return colorBold + colorErrorBg + colorError + level.CapitalString() + colorReset
	default:
		return ""
	}
}

// abbreviateName shortens component names: growth -> growth, mcmc.sampler -> m.sampler
func abbreviateName(name string) string {
	parts := strings.Split(name, ".")
	if len(parts) > 1 {
		return string(parts[0][0]) + "." + strings.Join(parts[1:], ".")
	}
	return name
}

// fieldValue extracts the value from a zap field, handling different field types
func fieldValue(field zapcore.Field) string {
	switch field.Type {
	case zapcore.StringType:
		return field.String
	case zapcore.BoolType:
		if field.Integer == 1 {
			return "true"
		}
		return "false"
	case zapcore.Int64Type, zapcore.Int32Type, zapcore.Int16Type, zapcore.Int8Type,
		zapcore.Uint64Type, zapcore.Uint32Type, zapcore.Uint16Type, zapcore.Uint8Type:
		return fmt.Sprintf("%d", field.Integer)
	case zapcore.Float64Type:
		return formatFloatBits(field.Integer, 64)
	case zapcore.Float32Type:
		return formatFloatBits(field.Integer, 32)
	case zapcore.DurationType:
		return fmt.Sprintf("%v", field.Interface)
	case zapcore.ErrorType:
		if err, ok := field.Interface.(error); ok {
			return err.Error()
		}
	}

	if field.Interface != nil {
		return fmt.Sprintf("%v", field.Interface)
	}
	if field.String != "" {
		return field.String
	}
	return fmt.Sprintf("%d", field.Integer)
}

// formatFloatBits renders a float stored in a zap field's Integer slot
func formatFloatBits(bits int64, size int) string {
	var v float64
	if size == 32 {
		v = float64(math.Float32frombits(uint32(bits)))
	} else {
		v = math.Float64frombits(uint64(bits))
	}
	s := fmt.Sprintf("%.4f", v)
	s = strings.TrimRight(s, "0")
	return strings.TrimRight(s, ".")
}

// formatFields renders all structured fields as key=value pairs.
// Keys in deep green, values in bright green; errors in red.
func formatFields(fields []zapcore.Field) string {
	parts := make([]string, 0, len(fields))
	for _, field := range fields {
		val := fieldValue(field)
		valColor := colorValue
		if field.Type == zapcore.ErrorType || field.Key == FieldError {
			valColor = colorError
		}
		parts = append(parts, colorKey+field.Key+colorReset+colorFg+"="+colorReset+valColor+val+colorReset)
	}
	return strings.Join(parts, " ")
}
