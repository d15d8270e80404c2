package obfx

import (
	"bytes"
	"context"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func processCSV(t *testing.T, input string, sensitiveFields []string, primaryKey string) (string, int, error) {
	t.Helper()
	var out bytes.Buffer
	count, err := CSVAdapter{}.ProcessStream(context.Background(), strings.NewReader(input), &out,
		sensitiveFields, primaryKey, StubObfuscateFunc())
	return out.String(), count, err
}

func TestCSVAdapter_ReplacesSensitiveFields(t *testing.T) {
	input := "id,name,email\n" +
		"1,Alice,alice@example.com\n" +
		"2,Bob,bob@example.com\n"

	output, count, err := processCSV(t, input, []string{"email"}, "id")

	require.NoError(t, err)
	assert.Equal(t, 2, count)
	assert.Equal(t, "id,name,email\n"+
		"1,Alice,OBFUSCATED_email_1\n"+
		"2,Bob,OBFUSCATED_email_2\n", output)
}

func TestCSVAdapter_HeaderSurvivesUnchanged(t *testing.T) {
	input := "id,full_name,email,phone\n1,Alice,a@x.com,111\n"

	output, _, err := processCSV(t, input, []string{"email", "phone"}, "id")

	require.NoError(t, err)
	lines := strings.Split(output, "\n")
	assert.Equal(t, "id,full_name,email,phone", lines[0])
}

func TestCSVAdapter_EmptyInput(t *testing.T) {
	output, count, err := processCSV(t, "", []string{"email"}, "id")

	require.Error(t, err)
	assert.ErrorIs(t, err, ErrMissingHeader)
	assert.True(t, IsFormatError(err))
	assert.Equal(t, 0, count)
	assert.Empty(t, output)
}

func TestCSVAdapter_HeaderOnly(t *testing.T) {
	output, count, err := processCSV(t, "id,email\n", []string{"email"}, "id")

	require.NoError(t, err)
	assert.Equal(t, 0, count)
	assert.Equal(t, "id,email\n", output)
}

func TestCSVAdapter_SensitiveFieldNotInHeader(t *testing.T) {
	input := "id,name\n1,Alice\n2,Bob\n"

	output, count, err := processCSV(t, input, []string{"email"}, "id")

	require.NoError(t, err)
	assert.Equal(t, 2, count)
	assert.Equal(t, input, output)
}

func TestCSVAdapter_PrimaryKeyColumnMissing(t *testing.T) {
	input := "name,email\nAlice,alice@example.com\n"

	output, count, err := processCSV(t, input, []string{"email"}, "id")

	require.NoError(t, err)
	assert.Equal(t, 1, count)
	assert.Equal(t, "name,email\nAlice,OBFUSCATED_email_\n", output)
}

func TestCSVAdapter_ShortRowPaddedAndObfuscated(t *testing.T) {
	input := "id,name,email\n1,Alice\n"

	output, count, err := processCSV(t, input, []string{"email"}, "id")

	require.NoError(t, err)
	assert.Equal(t, 1, count)
	assert.Equal(t, "id,name,email\n1,Alice,OBFUSCATED_email_1\n", output)
}

func TestCSVAdapter_LongRowExtrasDropped(t *testing.T) {
	input := "id,name\n1,Alice,unexpected\n"

	output, count, err := processCSV(t, input, []string{"name"}, "id")

	require.NoError(t, err)
	assert.Equal(t, 1, count)
	assert.Equal(t, "id,name\n1,OBFUSCATED_name_1\n", output)
}

func TestCSVAdapter_QuotedValuesSurvive(t *testing.T) {
	input := "id,note,email\n" +
		"1,\"likes, commas\",a@x.com\n"

	output, count, err := processCSV(t, input, []string{"email"}, "id")

	require.NoError(t, err)
	assert.Equal(t, 1, count)
	assert.Equal(t, "id,note,email\n1,\"likes, commas\",OBFUSCATED_email_1\n", output)
}

func TestCSVAdapter_BlankLinesSkipped(t *testing.T) {
	input := "id,email\n\n1,a@x.com\n"

	output, count, err := processCSV(t, input, []string{"email"}, "id")

	require.NoError(t, err)
	assert.Equal(t, 1, count)
	assert.Equal(t, "id,email\n1,OBFUSCATED_email_1\n", output)
}

func TestCSVAdapter_CRLFInput(t *testing.T) {
	input := "id,email\r\n1,a@x.com\r\n"

	output, count, err := processCSV(t, input, []string{"email"}, "id")

	require.NoError(t, err)
	assert.Equal(t, 1, count)
	assert.Equal(t, "id,email\n1,OBFUSCATED_email_1\n", output)
}

func TestCSVAdapter_DuplicateSensitiveColumns(t *testing.T) {
	input := "id,email,email\n1,a@x.com,b@y.com\n"

	output, count, err := processCSV(t, input, []string{"email"}, "id")

	require.NoError(t, err)
	assert.Equal(t, 1, count)
	assert.Equal(t, "id,email,email\n1,OBFUSCATED_email_1,OBFUSCATED_email_1\n", output)
}

func TestCSVAdapter_ContextCancellation(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	var out bytes.Buffer
	count, err := CSVAdapter{}.ProcessStream(ctx, strings.NewReader("id,email\n1,a@x.com\n"), &out,
		[]string{"email"}, "id", StubObfuscateFunc())

	require.Error(t, err)
	assert.ErrorIs(t, err, context.Canceled)
	assert.Equal(t, 0, count)
}

func TestCSVAdapter_CountsAllRows(t *testing.T) {
	var input strings.Builder
	input.WriteString("id,email\n")
	for i := 0; i < 100; i++ {
		input.WriteString("1,a@x.com\n")
	}

	_, count, err := processCSV(t, input.String(), []string{"email"}, "id")

	require.NoError(t, err)
	assert.Equal(t, 100, count)
}
