package rag

// SeedDocument 是用于初始化知识库的一条默认文档分块（未嵌入）。
type SeedDocument struct {
	ChunkID string `json:"chunk_id"`
	Source  string `json:"source"`
	Text    string `json:"text"`
}

// DefaultSeedDocuments 返回内置的演示知识库：店铺政策 + 排期政策。
// 排期类文档展示 RAG 上下文如何影响工具参数
// （例如“standard consultation = 30 分钟”决定日历事件的结束时间）。
func DefaultSeedDocuments() []SeedDocument {
	return []SeedDocument{
		{
			ChunkID: "policy_returns_v1",
			Source:  "https://help.example.com/return-policy",
			Text: `Return Policy

You can return unworn items within 30 days of purchase with original receipt. Items must be in original condition with tags attached.

IMPORTANT: Items over $200 require manual approval for returns. Please email support@company.com with your order details for items over $200.

Exceptions: Final sale items, customized products, and intimate apparel cannot be returned. Shoes must be unworn with original box.

Refunds will be processed to original payment method within 5-7 business days after we receive your return.`,
		},
		{
			ChunkID: "policy_shipping_v1",
			Source:  "https://help.example.com/shipping",
			Text: `Shipping Information

Free standard shipping on orders over $50. Standard shipping takes 3-5 business days. Express shipping available for $9.99 (1-2 business days).

International shipping available to select countries. Shipping costs calculated at checkout based on destination and weight.

Orders placed before 2 PM EST ship same day. Weekend orders ship on the next business day.`,
		},
		{
			ChunkID: "sizing_guide_v1",
			Source:  "https://help.example.com/sizing",
			Text: `Size Guide

Clothing sizes run true to size. Please refer to our size chart for measurements.

For shoes: If between sizes, we recommend sizing up for comfort. Athletic shoes may run small - consider sizing up half a size.

Exchanges for different sizes are free within 30 days. Use our online size guide tool for personalized recommendations.`,
		},
		{
			ChunkID: "support_contact_v1",
			Source:  "https://help.example.com/contact",
			Text: `Customer Support

Contact us Monday-Friday 9 AM - 6 PM EST:
- Email: support@example.com
- Phone: 1-800-555-0123
- Live chat available on our website

For order issues, have your order number ready. Response time is typically within 24 hours for email inquiries.

You can also track your order status online using your order number and email address.`,
		},
		{
			ChunkID: "scheduling_consultation_v1",
			Source:  "https://help.example.com/scheduling/consultations",
			Text: `Consultation Meeting Policy

Standard consultation calls are 30 minutes in duration. Extended consultations (60 minutes) are available upon request.

All consultation meetings must be scheduled at least 24 hours in advance. Same-day appointments are not available.

Meetings are conducted via video call. A calendar invitation with the meeting link will be sent to all attendees.

Cancellation policy: Please cancel or reschedule at least 4 hours before the scheduled time.`,
		},
		{
			ChunkID: "scheduling_demo_v1",
			Source:  "https://help.example.com/scheduling/demos",
			Text: `Product Demo Scheduling

Product demonstration sessions are 45 minutes long and include a live walkthrough of features.

Demos are available Monday through Friday, between 9 AM and 5 PM EST. No weekend demos available.

For group demos (more than 3 attendees), please schedule at least 48 hours in advance.

After the demo, attendees will receive a follow-up email with resources and next steps.`,
		},
		{
			ChunkID: "scheduling_support_v1",
			Source:  "https://help.example.com/scheduling/support",
			Text: `Technical Support Calls

Technical support calls are 30 minutes by default. Complex issues may require follow-up sessions.

Priority support is available for enterprise customers with guaranteed 4-hour response time.

Before scheduling a support call, please gather:
- Your account/order number
- Description of the issue
- Screenshots if applicable

Support calls are available 24/7 for critical issues.`,
		},
		{
			ChunkID: "scheduling_timezone_v1",
			Source:  "https://help.example.com/scheduling/timezones",
			Text: `Timezone Information

All meeting times are displayed in your local timezone when booking through our system.

Our team operates primarily in EST (Eastern Standard Time). For international clients, we offer early morning (7 AM EST) and late afternoon (6 PM EST) slots.

When scheduling, please confirm your timezone to avoid confusion. Calendar invitations will include timezone information.

Default timezone for all meetings is America/New_York (EST/EDT).`,
		},
	}
}
