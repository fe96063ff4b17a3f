package transaction

import "github.com/google/uuid"

type taskTemplate struct {
	phase       Phase
	title       string
	description string
	assignee    Assignee
	required    bool
}

var defaultChecklist = []taskTemplate{
	{PhaseNegotiations, "Confirm purchase price", "Agree the final amount with the seller.", AssigneeBuyer, true},
	{PhaseNegotiations, "Share collateral file", "Upload the note, mortgage or deed of trust and payment history.", AssigneeSeller, true},
	{PhaseNegotiations, "Review collateral file", "Complete due diligence on the shared documents.", AssigneeBuyer, true},
	{PhaseNegotiations, "Order broker price opinion", "Optional valuation of the underlying property.", AssigneeBuyer, false},
	{PhaseClosing, "Sign purchase agreement", "Both parties execute the note purchase agreement.", AssigneeSeller, true},
	{PhaseClosing, "Run title and lien search", "Confirm lien position and clear title.", AssigneePlatform, true},
	{PhaseClosing, "Fund escrow", "Wire the purchase amount to escrow.", AssigneeBuyer, true},
	{PhaseClosing, "Deliver original note and allonge", "Send the endorsed original collateral to the buyer.", AssigneeSeller, true},
	{PhaseClosing, "Record assignment", "Record the assignment of mortgage with the county.", AssigneePlatform, true},
	{PhaseClosing, "Send borrower notification letters", "Hello and goodbye letters to the borrower.", AssigneeSeller, false},
}

// DefaultChecklist builds the tasks every new transaction starts with.
func DefaultChecklist(transactionID uuid.UUID) []*Task {
	tasks := make([]*Task, len(defaultChecklist))

	order := map[Phase]int{}
	for i, tmpl := range defaultChecklist {
		order[tmpl.phase]++
		tasks[i] = &Task{
			TransactionID: transactionID,
			Phase:         tmpl.phase,
			Title:         tmpl.title,
			Description:   tmpl.description,
			Assignee:      tmpl.assignee,
			Required:      tmpl.required,
			Status:        TaskPending,
			DisplayOrder:  order[tmpl.phase],
		}
	}

	return tasks
}
