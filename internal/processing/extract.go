package processing

import (
	"bufio"
	"strings"
)

const accessionPrefix = "ACCESSION"

// GenBank feature lines can run long; the default scanner buffer is too
// small for some flat files.
const maxLineSize = 1024 * 1024

// ExtractAccessions scans text line by line and returns, in input order,
// the token following the ACCESSION keyword on each line that starts
// with it. Lines where the keyword has no following token are skipped.
// Extraction never fails.
func ExtractAccessions(text string) []string {
	accessions := []string{}

	scanner := bufio.NewScanner(strings.NewReader(text))
	scanner.Buffer(make([]byte, 64*1024), maxLineSize)

	for scanner.Scan() {
		line := scanner.Text()
		if !strings.HasPrefix(line, accessionPrefix) {
			continue
		}

		fields := strings.Fields(line)
		if len(fields) < 2 {
			// keyword with no identifier after it
			continue
		}

		accessions = append(accessions, fields[1])
	}

	return accessions
}
