package extractor

const extractionPrompt = `You convert a user's questionnaire answers into preference statements for rewriting their notes.

REVIEW PHASE: %s

ANSWERS:
%s
Rules:
- Produce one or more statements for every answer above.
- Phrase each statement as a positive desired property of the output text, starting with "text should".
- Never describe defects of an existing text. You have not seen the document; you only know the user's stated preferences.
- category is one of: Structure, Content, Style, Purpose, Detail Level, Organization, User Preference.
- confidence is 1.0 when the user chose the property explicitly, lower (never below 0.5) when you inferred it.
- source names the question, e.g. "%s_format_question".

Each array element must match this JSON Schema:
%s

Return ONLY a JSON array, no markdown fences or other text.`
