package validation

// Per-operation rule sets. Messages follow the catalog the API has always
// reported, so clients can match on them.

func SignupRules() RuleSet {
	return RuleSet{
		{
			Field: "email",
			Checks: []Check{
				{Pred: Required, Message: "email is required"},
				{Pred: Email, Message: "invalid email address"},
			},
		},
		{
			Field: "password",
			Checks: []Check{
				{Pred: Required, Message: "password is required"},
				{Pred: MinLength(8), Message: "password must be at least 8 characters long"},
				{Pred: HasUppercase, Message: "password must contain at least one uppercase letter"},
				{Pred: HasDigit, Message: "password must contain at least one number"},
			},
		},
	}
}

// LoginRules deliberately re-checks nothing about password composition;
// whether a submitted password matches is the only question at login.
func LoginRules() RuleSet {
	return RuleSet{
		{
			Field: "email",
			Checks: []Check{
				{Pred: Required, Message: "email is required"},
				{Pred: Email, Message: "invalid email address"},
			},
		},
		{
			Field: "password",
			Checks: []Check{
				{Pred: Required, Message: "password is required"},
			},
		},
	}
}

func CreateLeadRules() RuleSet {
	return RuleSet{
		{
			Field: "name",
			Checks: []Check{
				{Pred: Required, Message: "name is required"},
			},
		},
		{
			Field: "email",
			Checks: []Check{
				{Pred: Email, Message: "invalid email address"},
			},
		},
		{
			Field: "phone",
			Checks: []Check{
				{Pred: Required, Message: "phone is required"},
			},
		},
	}
}

func UpdateLeadRules() RuleSet {
	return RuleSet{
		{
			Field:    "name",
			Optional: true,
			Checks: []Check{
				{Pred: Required, Message: "name cannot be empty"},
			},
		},
		{
			Field:    "email",
			Optional: true,
			Checks: []Check{
				{Pred: Email, Message: "invalid email address"},
			},
		},
		{
			Field:    "phone",
			Optional: true,
			Checks: []Check{
				{Pred: Required, Message: "phone cannot be empty"},
			},
		},
		{
			Field:    "status",
			Optional: true,
			Checks: []Check{
				{Pred: OneOf("open", "contacted", "closed"), Message: "invalid status value"},
			},
		},
		{
			Field:    "assignedTo",
			Optional: true,
			Checks: []Check{
				{Pred: UUID, Message: "invalid assigned user ID"},
			},
		},
	}
}

func LeadIDRules() RuleSet {
	return RuleSet{
		{
			Field: "id",
			Checks: []Check{
				{Pred: UUID, Message: "invalid lead ID format"},
			},
		},
	}
}
