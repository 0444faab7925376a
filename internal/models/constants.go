package models

const (
	ContextSeparator = "\n---\n"
	ThinkTag         = `(?s)<think>.*?</think>`

	DefaultChatModel   = "qwen/qwen3-30b-a3b:free"
	DefaultChatBaseURL = "https://openrouter.ai/api/v1"
)

// user facing messages
const (
	MsgMissingAPIKey     = "OpenRouter API key not found. Please set it in your .env file."
	MsgNoDocuments       = "Please upload PDF documents first."
	MsgNotProcessed      = "Please upload and process PDF documents first."
	MsgNoText            = "No text could be extracted from the uploaded PDF(s). Please check the files."
	MsgNoChunks          = "Could not split text into chunks. The document might be too short or empty after extraction."
	MsgIndexFailed       = "Failed to create vector store. Please check logs."
	MsgProcessed         = "PDFs processed successfully! You can now ask questions."
	MsgProcessingError   = "An error occurred while processing the PDFs."
	MsgBusy              = "Still working on the previous request. Please wait."
	MsgAnswerFailedFmt   = "Sorry, I encountered an error: %s"
	MsgEmptyQuestion     = "Please type a question."
	MsgSessionClosed     = "This session has ended. Please reload the page."
	MsgExtractWarningFmt = "Could not read %s: %v"
)

var (
	SystemPromptTemplate = `You are a helpful assistant answering questions about the documents the user uploaded.
Use the following pieces of context to answer the question at the end.
If you don't know the answer, just say that you don't know, don't try to make up an answer.

Context:
%s
`
)
