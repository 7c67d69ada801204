package config

const defaultExtractionSystem = `You are an expert knowledge extraction system. Analyze the conversation and extract the key concepts, their attributes, and the relationships between them.
Respond with a single JSON object with exactly two keys:
- "concepts": an object mapping each concept name to an object of its attributes
- "relationships": a list of objects, each with "source", "relation" and "target" string fields

Example:
{"concepts": {"Photosynthesis": {"type": "process"}}, "relationships": [{"source": "Plants", "relation": "perform", "target": "Photosynthesis"}]}`

const defaultExtractionUser = `Please extract structured knowledge from the following conversation:

%s

Return only the JSON object with the extracted knowledge.`

const defaultQuerySystem = `You are an assistant that helps users query a knowledge base. You have access to information about concepts and their relationships. When responding to queries, use only the information provided by the knowledge base.`

const defaultQueryUser = `Based on the following information from our knowledge base, please answer this query: '%s'

Retrieved information: %s`

const defaultInterviewer = `You are an interface to communicate with domain experts. Your goal is to ask relevant questions to extract their knowledge about a specific domain. Ask one question at a time, focusing on technical details, processes, relationships between concepts, and key attributes.`

const defaultAutoReply = `You are an assistant that acts as a user to reply to the assistant agent. Your goal is to provide relevant responses to the assistant's questions.`

const defaultAutoReplyUser = `Respond to the assistant's last message: %s`

// Default returns a complete working configuration: OpenAI, JSON file
// store, built-in prompts.
func Default() *Config {
	return &Config{
		LLM: LLMConfig{
			Provider: "openai",
			Model:    "gpt-4o",
		},
		Store: StoreConfig{
			Backend:       "file",
			Path:          "knowledge_base.json",
			KnowledgeBase: "default",
		},
		Memgraph: MemgraphConfig{
			URI: "bolt://localhost:7687",
		},
		Audio: AudioConfig{
			TranscriptionModel: "whisper-1",
			SpeechModel:        "tts-1",
			Voice:              "nova",
			Dir:                "audio",
		},
		Extraction: ExtractionPrompts{
			System: defaultExtractionSystem,
			User:   defaultExtractionUser,
		},
		Query: QueryPrompts{
			System:  defaultQuerySystem,
			User:    defaultQueryUser,
			Matcher: "substring",
		},
		Conversation: ConversationPrompts{
			Interviewer:   defaultInterviewer,
			AutoReply:     defaultAutoReply,
			AutoReplyUser: defaultAutoReplyUser,
			MaxTokens:     500,
		},
		Concurrency: ConcurrencyConfig{
			BulkIngest: 4,
		},
		Server: ServerConfig{
			Port: "8080",
			Env:  "development",
		},
	}
}
