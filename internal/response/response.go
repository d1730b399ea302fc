package response

// Envelope is the wire shape all endpoints answer with. Exactly one of
// Data, Message or Insights is set on success; Error and Details only on
// failure.
type Envelope struct {
	Status   string      `json:"status"`
	Message  string      `json:"message,omitempty"`
	Data     interface{} `json:"data,omitempty"`
	Insights interface{} `json:"insights,omitempty"`
	Error    string      `json:"error,omitempty"`
	Details  interface{} `json:"details,omitempty"`
}

func OK(data interface{}) Envelope {
	return Envelope{Status: "success", Data: data}
}

func Message(msg string) Envelope {
	return Envelope{Status: "success", Message: msg}
}

func Insights(ins interface{}) Envelope {
	return Envelope{Status: "success", Insights: ins}
}

func Err(msg string, details interface{}) Envelope {
	return Envelope{Status: "error", Error: msg, Details: details}
}
