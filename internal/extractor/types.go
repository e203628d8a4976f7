package extractor

// candidate is one element of the JSON array the model is asked to return.
type candidate struct {
	Category   string  `json:"category" jsonschema:"enum=Structure,enum=Content,enum=Style,enum=Purpose,enum=Detail Level,enum=Organization,enum=User Preference"`
	Statement  string  `json:"statement" jsonschema:"minLength=11,description=Positive desired property of the text starting with 'text should'"`
	Confidence float64 `json:"confidence" jsonschema:"minimum=0.5,maximum=1"`
	Source     string  `json:"source" jsonschema:"description=Question the statement came from such as metadata_format_question"`
}
