// Package prompts holds the generation prompts for both pipeline phases.
package prompts

import (
	"fmt"
	"strings"
)

// Locate is the phase-1 prompt: enumerate every BASIC program listing
// visible across the provided page images.
const Locate = `PROGRAM LOCATION EXTRACTION

Please scan through all the provided images of BASIC book pages and identify every BASIC program listing. Look for program source code that appears in a terminal-like computer typeface with line numbers. Programs may span multiple pages.

For each program you find, provide:
1. Program name/title
2. Page numbers where the program appears
3. Brief description if available

IMPORTANT: Look only for the actual BASIC source code listings (lines with numbers like 10, 20, 30, etc.) in computer terminal font. DO NOT include program execution output or sample runs.

Return your findings in this exact JSON format:
` + "```json" + `
{
  "programs": [
    {
      "name": "Program Name",
      "pages": [1, 2, 3],
      "description": "Brief description"
    }
  ]
}
` + "```"

// Extract builds the phase-2 prompt for one program: transcribe only the
// numbered source statements, preserving formatting across page boundaries.
func Extract(name string, pages []int) string {
	pagesStr := "all pages"
	if len(pages) > 0 {
		strs := make([]string, len(pages))
		for i, p := range pages {
			strs[i] = fmt.Sprintf("%d", p)
		}
		pagesStr = strings.Join(strs, ", ")
	}

	return fmt.Sprintf(`PROGRAM SOURCE EXTRACTION

Please extract the complete BASIC source code for the program '%s' from the provided images (expected on pages: %s). Look for the source code listing that appears in terminal-like computer typeface with line numbers.

IMPORTANT GUIDELINES:
- Extract ONLY the BASIC source code (lines starting with numbers like 10, 20, 30, etc.)
- DO NOT include program execution output, sample runs, or example gameplay
- Maintain exact formatting, spacing, and line numbers as they appear
- If the program spans multiple pages, combine all source lines in order
- Include any comments or REM statements that are part of the source code

Return the source code in markdown format:
`+"```basic"+`
[SOURCE CODE HERE]
`+"```", name, pagesStr)
}
