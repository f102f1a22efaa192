package admin

// Stat is one dashboard card.
type Stat struct {
	Title       string `json:"title"`
	Value       string `json:"value"`
	Change      string `json:"change"`
	ChangeType  string `json:"changeType"`
	Description string `json:"description"`
}

// Activity is an entry of the recent activity feed.
type Activity struct {
	User   string `json:"user"`
	Action string `json:"action"`
	Time   string `json:"time"`
}

// Subscription is a row of the recent subscriptions table.
type Subscription struct {
	ID     string `json:"id"`
	User   string `json:"user"`
	Email  string `json:"email"`
	Plan   string `json:"plan"`
	Amount string `json:"amount"`
	Status string `json:"status"`
	Date   string `json:"date"`
}

// Feature is a pricing plan bullet.
type Feature struct {
	Text      string `json:"text"`
	Included  bool   `json:"included"`
	Highlight bool   `json:"highlight,omitempty"`
}

// Plan is a pricing tier shown on the marketing site.
type Plan struct {
	ID           string    `json:"id"`
	Title        string    `json:"title"`
	Description  string    `json:"description"`
	MonthlyPrice int       `json:"monthlyPrice"`
	YearlyPrice  int       `json:"yearlyPrice"`
	DailyChats   int       `json:"dailyChats,omitempty"`
	Features     []Feature `json:"features"`
}

// Settings are the toggles of the admin settings page.
type Settings struct {
	MaintenanceMode    bool `json:"maintenanceMode"`
	EmailNotifications bool `json:"emailNotifications"`
	UserRegistration   bool `json:"userRegistration"`
	AIChatEnabled      bool `json:"aiChatEnabled"`
}

// Dataset is the complete mocked admin data set.
type Dataset struct {
	DashboardStats      []Stat
	UserStats           []Stat
	SubscriptionStats   []Stat
	RecentActivity      []Activity
	RecentSubscriptions []Subscription
	Plans               []Plan
	Settings            Settings
}

// Seed provides the placeholder figures shown by the admin panel.
func Seed() Dataset {
	return Dataset{
		DashboardStats: []Stat{
			{Title: "Total Users", Value: "2,847", Change: "+12% from last month", ChangeType: "positive", Description: "Active registered users"},
			{Title: "Premium Subscribers", Value: "1,234", Change: "+8% from last month", ChangeType: "positive", Description: "Paid subscription users"},
			{Title: "Monthly Revenue", Value: "$24,680", Change: "+15% from last month", ChangeType: "positive", Description: "Total recurring revenue"},
			{Title: "Active Sessions", Value: "847", Change: "Currently online", ChangeType: "neutral", Description: "Users online right now"},
		},
		UserStats: []Stat{
			{Title: "Total Users", Value: "2,847", Change: "+12% from last month", ChangeType: "positive", Description: "All registered users"},
			{Title: "New Users", Value: "234", Change: "This month", ChangeType: "neutral", Description: "New registrations"},
			{Title: "Active Users", Value: "2,103", Change: "+5% from last week", ChangeType: "positive", Description: "Active in last 30 days"},
			{Title: "Inactive Users", Value: "744", Change: "-2% from last month", ChangeType: "positive", Description: "Inactive users"},
		},
		SubscriptionStats: []Stat{
			{Title: "Total Revenue", Value: "$24,680", Change: "+15% from last month", ChangeType: "positive", Description: "Monthly recurring revenue"},
			{Title: "Premium Users", Value: "1,234", Change: "+8% from last month", ChangeType: "positive", Description: "Active premium subscribers"},
			{Title: "Conversion Rate", Value: "12.5%", Change: "+2.1% from last month", ChangeType: "positive", Description: "Free to premium conversion"},
			{Title: "Churn Rate", Value: "3.2%", Change: "-0.5% from last month", ChangeType: "positive", Description: "Monthly subscription cancellations"},
		},
		RecentActivity: []Activity{
			{User: "Sarah Johnson", Action: "Upgraded to Premium", Time: "2 minutes ago"},
			{User: "Mike Chen", Action: "Created new account", Time: "5 minutes ago"},
			{User: "Emma Wilson", Action: "Logged medication reminder", Time: "8 minutes ago"},
			{User: "David Brown", Action: "Scheduled appointment", Time: "12 minutes ago"},
			{User: "Lisa Garcia", Action: "Updated health profile", Time: "15 minutes ago"},
		},
		RecentSubscriptions: []Subscription{
			{ID: "1", User: "Sarah Johnson", Email: "sarah.johnson@email.com", Plan: "Premium Monthly", Amount: "$19.99", Status: "active", Date: "2024-03-15"},
			{ID: "2", User: "Mike Chen", Email: "mike.chen@email.com", Plan: "Premium Annual", Amount: "$199.99", Status: "active", Date: "2024-03-14"},
			{ID: "3", User: "Emma Wilson", Email: "emma.wilson@email.com", Plan: "Premium Monthly", Amount: "$19.99", Status: "cancelled", Date: "2024-03-13"},
			{ID: "4", User: "David Brown", Email: "david.brown@email.com", Plan: "Premium Annual", Amount: "$199.99", Status: "active", Date: "2024-03-12"},
			{ID: "5", User: "Lisa Garcia", Email: "lisa.garcia@email.com", Plan: "Premium Monthly", Amount: "$19.99", Status: "pending", Date: "2024-03-11"},
		},
		Plans: []Plan{
			{
				ID:          "free",
				Title:       "Free",
				Description: "Perfect for getting started with health tracking",
				DailyChats:  5,
				Features: []Feature{
					{Text: "Basic health tracking", Included: true},
					{Text: "5 AI chat messages per day", Included: true},
					{Text: "Medication reminders", Included: true},
					{Text: "Basic health insights", Included: true},
					{Text: "Mobile app access", Included: true},
					{Text: "Advanced AI conversations"},
					{Text: "Unlimited health logs"},
					{Text: "Personalized health reports"},
					{Text: "Priority support"},
					{Text: "Health trend analysis"},
				},
			},
			{
				ID:           "pro",
				Title:        "Pro",
				Description:  "Advanced AI health insights and unlimited features",
				MonthlyPrice: 29,
				YearlyPrice:  290,
				Features: []Feature{
					{Text: "Everything in Free", Included: true},
					{Text: "Unlimited AI conversations", Included: true, Highlight: true},
					{Text: "Advanced health analytics", Included: true, Highlight: true},
					{Text: "Personalized health reports", Included: true, Highlight: true},
					{Text: "Smart health predictions", Included: true, Highlight: true},
					{Text: "Priority customer support", Included: true},
					{Text: "Export health data", Included: true},
					{Text: "Family health sharing", Included: true},
					{Text: "Integration with wearables", Included: true},
					{Text: "Custom health goals", Included: true},
				},
			},
		},
		Settings: Settings{
			EmailNotifications: true,
			UserRegistration:   true,
			AIChatEnabled:      true,
		},
	}
}

// YearlySavings returns the yearly discount of p as a rounded percentage.
func (p Plan) YearlySavings() int {
	full := p.MonthlyPrice * 12
	if full == 0 {
		return 0
	}
	return int(float64(full-p.YearlyPrice)/float64(full)*100 + 0.5)
}
