package processing

import (
	"fmt"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestExtractAccessions(t *testing.T) {
	tests := []struct {
		name string
		text string
		want []string
	}{
		{
			name: "mixed lines preserve order",
			text: "ACCESSION A1\nIGNORE\nACCESSION A2\n",
			want: []string{"A1", "A2"},
		},
		{
			name: "no matching lines",
			text: "LOCUS X\nDEFINITION y\n",
			want: []string{},
		},
		{
			name: "empty input",
			text: "",
			want: []string{},
		},
		{
			name: "windows line endings",
			text: "ACCESSION A1\r\nACCESSION A2\r\n",
			want: []string{"A1", "A2"},
		},
		{
			name: "no trailing newline",
			text: "ACCESSION A1",
			want: []string{"A1"},
		},
		{
			name: "keyword with no identifier is skipped",
			text: "ACCESSION\nACCESSION A1\nACCESSION   \n",
			want: []string{"A1"},
		},
		{
			name: "extra tokens after identifier are ignored",
			text: "ACCESSION A1 A2 A3\n",
			want: []string{"A1"},
		},
		{
			name: "indented keyword does not match",
			text: "  ACCESSION A1\n",
			want: []string{},
		},
		{
			name: "tab separated",
			text: "ACCESSION\tNC_000913\n",
			want: []string{"NC_000913"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := ExtractAccessions(tt.text)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestExtractAccessions_ManyRecords(t *testing.T) {
	var sb strings.Builder
	for i := 0; i < 1000; i++ {
		fmt.Fprintf(&sb, "ACCESSION NC_%06d\nORIGIN\n//\n", i)
	}

	got := ExtractAccessions(sb.String())

	assert.Len(t, got, 1000)
	assert.Equal(t, "NC_000000", got[0])
	assert.Equal(t, "NC_000999", got[999])
}

func TestExtractAccessions_LongLines(t *testing.T) {
	long := strings.Repeat("x", 200_000)
	text := "ACCESSION A1\n" + long + "\nACCESSION A2\n"

	got := ExtractAccessions(text)

	assert.Equal(t, []string{"A1", "A2"}, got)
}
