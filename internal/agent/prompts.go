package agent

// Prompt templates for the chat workflow. Placeholders are filled with
// fmt.Sprintf, so literal braces in the JSON examples are fine.

const systemPrompt = `You are a helpful AI assistant for Chakancha Global, a premium Kenyan tea company.

Your capabilities:
1. Answer questions about tea, products, and company information
2. Track DHL shipments
3. Provide general assistance

Guidelines:
- Be friendly and professional
- Keep responses concise and helpful (2-3 paragraphs max)
- Always provide accurate information from tools, never make up answers
- If you don't know something, admit it and offer to help differently

Company Overview:
Chakancha Global specializes in premium Kenyan black tea from the highlands of Nandi County.
Our tea is 100% organic, fair trade, and hand-picked for the highest quality.`

const intentPrompt = `Analyze the user's message and determine their intent.

User Message: %q

Previous Context:
%s

Intent Categories:
1. faq - Questions about tea, products, company, ordering, pricing, or general information
2. dhl_tracking - Tracking shipment or package delivery status
3. greeting - Hello, hi, greetings, how are you
4. general_chat - Small talk, casual conversation, or unclear intent
5. unknown - Cannot determine intent clearly

Important:
- If the message contains tracking numbers or words like "track", "shipment", "delivery", "package" -> dhl_tracking
- If the message asks about tea, products, prices, company, or "Chakan Tree" -> faq
- If the message is just "hi", "hello", "hey" -> greeting

Also extract:
- tracking_number: Look for DHL tracking numbers (typically 10-39 alphanumeric characters)
  Examples: "JD014600002082242811", "1234567890", "TEST123"
  Extract only the alphanumeric tracking code
- faq_query: If it's an FAQ intent, extract the core question

Respond ONLY with valid JSON (no markdown, no explanation):
{
    "intent": "one of: faq, dhl_tracking, greeting, general_chat, unknown",
    "confidence": 0.85,
    "tracking_number": "extracted_number or null",
    "faq_query": "extracted_question or null"
}

Now analyze this message:`

const responsePrompt = `Generate a helpful response based on the following information.

User Message: %q
Detected Intent: %s

Tool Results:
%s

Previous Conversation Context:
%s

Guidelines for response:
1. Use ONLY information from tool results - never make up information
2. Be concise and friendly (2-3 paragraphs maximum)
3. For FAQ answers:
   - Provide the answer naturally without citing "FAQ #X"
   - If multiple FAQs match, synthesize into one coherent answer
   - Don't just copy-paste FAQ text, make it conversational
4. For greetings:
   - Be warm and welcoming
   - Briefly mention what you can help with
5. For errors or no results:
   - Be helpful and suggest alternatives
6. End FAQ responses with "Is there anything else you'd like to know about our teas?"
7. End tracking responses with "Let me know if you need anything else!"

Special cases:
- If tracking number not found: Suggest checking the number and provide customer service contact
- If no FAQ results: Offer to help with general information or connect to customer service
- If general chat: Be friendly but gently guide back to tea and tracking topics

Generate a natural, helpful response:`

const greetingResponse = `Hello! Welcome to Chakancha Global!

I'm here to help you with:
- Information about our premium Kenyan teas
- Tracking your DHL shipments
- Questions about ordering and our products

How can I assist you today?`

const errorResponse = `I apologize, but I'm having trouble processing your request right now.

Please try:
- Rephrasing your question
- Checking if your tracking number is correct
- Contacting our support team at support@chakancha.com

I'm here to help!`

const noFAQResultsResponse = `I don't have specific information about that in my knowledge base right now.

However, I can help you with:
- Our tea products and varieties
- Pricing and ordering information
- Shipping and delivery details
- Our Chakan Tree referral program

Or you can contact us directly at info@chakancha.com for personalized assistance.

What would you like to know?`

const trackingNotFoundResponse = `I couldn't find tracking information for that number.

Please check:
- The tracking number is correct (should be 10-39 characters)
- You're using the complete tracking number from your shipping email
- The shipment may not be in the system yet (can take 24 hours)

If you continue having issues, please contact our support team at support@chakancha.com

Can I help you with anything else?`
