package bot

// Command tokens. Matching is case-sensitive and exact on the first
// whitespace-delimited token of a message.
const (
	cmdStart       = "/start"
	cmdHelp        = "/help"
	cmdMood        = "/mood"
	cmdJournal     = "/journal"
	cmdAffirmation = "/affirmation"
	cmdEnd         = "/end"
)

const startMessage = "Hi there! 😊 I'm your mental health chatbot.\n" +
	"I can help with mood tracking, journaling, affirmations, and conversations.\n" +
	"Here's what I can do:\n" +
	"/start - Start a conversation\n" +
	"/help - List available commands\n" +
	"/mood - Track your mood\n" +
	"/journal - Write a private journal entry\n" +
	"/affirmation - Receive a positive affirmation\n" +
	"You can also chat with me!"

const helpMessage = "Here are the things you can do:\n" +
	"/start - Start a conversation\n" +
	"/help - List this message\n" +
	"/mood - Track your mood\n" +
	"/journal - Write a journal entry\n" +
	"/affirmation - Receive a positive affirmation\n" +
	"/end - End the session and clear it\n" +
	"You can also chat with me about your feelings!"

const moodPrompt = "How are you feeling today? (e.g., Happy, Sad, Anxious)"

const journalPrompt = "Write your thoughts below. I'll keep them private."

const journalAck = "Thank you for sharing. I've saved your journal entry."

const endAck = "Thank you for sharing. Your session data has been cleared."

const unknownCommandReply = "I didn't understand that command. Send /help to see what I can do."

// moodAck acknowledges a logged mood, echoing the raw text back.
func moodAck(mood string) string {
	return "Thank you for sharing! I've logged your mood as '" + mood + "'."
}
