package synth

const (
	improvedMarker = "===IMPROVED_TEXT==="
	changesMarker  = "===CHANGES_MADE==="
)

const rewritePrompt = `Rewrite the notes below so they satisfy every preference the user has stated.

ORIGINAL PDF TEXT:
%s

BASE TEXT TO IMPROVE:
%s

USER PREFERENCES (category: statement (confidence)):
%s
USER ANSWERS FROM THE REVIEW:
%s
Keep every fact from the original text. Apply the preferences to the base text; do not invent content.
Write the improved text in %s.

Format your response EXACTLY like this:

===IMPROVED_TEXT===
[the improved text]

===CHANGES_MADE===
- [change 1]
- [change 2]`
