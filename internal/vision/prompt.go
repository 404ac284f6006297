package vision

// LayoutPrompt asks the vision model for a markdown transcription of a
// document image, with tables kept as HTML so their structure survives
// downstream parsing. It is used both for full-page transcription and
// for figures embedded in word-processing documents.
const LayoutPrompt = `Please extract the layout information from the image and output only the text content in Markdown format.

1. Ignore bounding boxes and coordinates.
2. Categories:
   - Picture: omit the text field.
   - Formula: output as LaTeX format (enclosed in $ or $$).
   - Table: MUST output as HTML table format with <table>, <tr>, <td>, <th> tags. Preserve all data and structure.
   - All other categories (Text, Title, Caption, etc.): output as Markdown.

3. Constraints:
   - The output text must be the original text from the image, with no translation.
   - All layout elements must be sorted according to human reading order.
   - Tables should be formatted as complete HTML tables without unnecessary spaces or newlines.

4. Final Output: A single Markdown document containing the extracted content with tables in HTML format.`
