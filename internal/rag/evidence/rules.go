package evidence

import "legal-rag-workers/internal/models"

type claimRules struct {
	required      []models.EvidenceItem
	optional      []models.EvidenceItem
	admissibility map[string]string
	examples      []string
}

var PreservationGuidelines = []string{
	"Keep original documents and devices in their original condition",
	"Make copies of all documents, photos and electronic records",
	"Store evidence securely in a dry, access-controlled location",
	"Record a chain of custody for every item that changes hands",
}

var baseAdmissibility = map[string]string{
	"relevance":      "Evidence must make a fact of consequence more or less probable",
	"authentication": "The proponent must show the item is what it is claimed to be",
	"hearsay":        "Out-of-court statements offered for their truth are excluded unless an exception applies",
	"best_evidence":  "The original writing, recording or photograph is generally required to prove its content",
}

var genericRules = claimRules{
	required: []models.EvidenceItem{
		{Type: "documents", Description: "Contracts, letters, notices or records showing what happened"},
		{Type: "witness_statements", Description: "Written accounts from people with first-hand knowledge"},
	},
	optional: []models.EvidenceItem{
		{Type: "photographs", Description: "Photos or video of the scene, property or injuries"},
		{Type: "communications", Description: "Emails, texts and messages between the parties"},
	},
	examples: []string{"Signed agreement", "Dated correspondence", "Notes written at the time of events"},
}

// claimTable is keyed by normalised claim type.
var claimTable = map[string]claimRules{
	"personal_injury": {
		required: []models.EvidenceItem{
			{Type: "medical_records", Description: "Treatment records linking injuries to the incident", TimePeriod: "from the incident to present"},
			{Type: "incident_report", Description: "Police, accident or incident report"},
			{Type: "proof_of_damages", Description: "Medical bills, lost wage statements and repair estimates"},
		},
		optional: []models.EvidenceItem{
			{Type: "photographs", Description: "Photos of the scene and of injuries over time"},
			{Type: "witness_statements", Description: "Statements from bystanders or first responders"},
			{Type: "expert_testimony", Description: "Medical or accident reconstruction opinion"},
		},
		admissibility: map[string]string{
			"expert_testimony": "Expert opinions must rest on reliable methods applied to the facts",
			"medical_records":  "Records kept in the ordinary course of treatment qualify as business records",
		},
		examples: []string{"Emergency room discharge summary", "Dashcam footage", "Pay stubs showing missed work"},
	},
	"breach_of_contract": {
		required: []models.EvidenceItem{
			{Type: "contract", Description: "The written agreement or proof of its oral terms"},
			{Type: "proof_of_performance", Description: "Evidence you met your own obligations"},
			{Type: "proof_of_breach", Description: "Evidence the other party failed to perform"},
			{Type: "proof_of_damages", Description: "Invoices, receipts or calculations of the loss"},
		},
		optional: []models.EvidenceItem{
			{Type: "communications", Description: "Emails and messages about the agreement or the breach", TimePeriod: "negotiation through dispute"},
			{Type: "course_of_dealing", Description: "Records of prior transactions between the parties"},
		},
		admissibility: map[string]string{
			"parol_evidence": "Prior or contemporaneous statements generally cannot contradict a fully integrated written contract",
		},
		examples: []string{"Signed purchase agreement", "Unpaid invoice", "Demand letter and reply"},
	},
	"employment_discrimination": {
		required: []models.EvidenceItem{
			{Type: "employment_records", Description: "Offer letter, job descriptions, reviews and personnel file"},
			{Type: "adverse_action", Description: "Documentation of the firing, demotion or denial"},
			{Type: "comparator_evidence", Description: "How similarly situated coworkers were treated"},
		},
		optional: []models.EvidenceItem{
			{Type: "communications", Description: "Emails or messages showing bias"},
			{Type: "agency_charge", Description: "Charge filed with the EEOC or state agency", TimePeriod: "within the filing deadline"},
		},
		admissibility: map[string]string{
			"statements_of_party": "Statements by the employer's agents about matters within their job are not hearsay",
		},
		examples: []string{"Performance reviews before and after a complaint", "Termination letter"},
	},
	"landlord_tenant": {
		required: []models.EvidenceItem{
			{Type: "lease", Description: "The lease and any renewals or addenda"},
			{Type: "payment_records", Description: "Rent receipts, bank statements or ledger", TimePeriod: "full tenancy"},
			{Type: "notices", Description: "Notices sent or received, with dates of delivery"},
		},
		optional: []models.EvidenceItem{
			{Type: "photographs", Description: "Move-in and move-out photos of the unit"},
			{Type: "repair_requests", Description: "Written maintenance requests and responses"},
		},
		examples: []string{"Move-in checklist", "Three-day notice", "Security deposit itemisation"},
	},
	"divorce": {
		required: []models.EvidenceItem{
			{Type: "financial_records", Description: "Tax returns, pay stubs and bank statements", TimePeriod: "last three years"},
			{Type: "asset_records", Description: "Deeds, titles, retirement and investment statements"},
			{Type: "marriage_certificate", Description: "Proof of the date and place of marriage"},
		},
		optional: []models.EvidenceItem{
			{Type: "separate_property", Description: "Records tracing assets owned before marriage or inherited"},
			{Type: "parenting_records", Description: "Calendars and school records relevant to custody"},
		},
		examples: []string{"Financial disclosure statement", "Prenuptial agreement"},
	},
}

var claimAliases = map[string]string{
	"contract":       "breach_of_contract",
	"car_accident":   "personal_injury",
	"negligence":     "personal_injury",
	"discrimination": "employment_discrimination",
	"eviction":       "landlord_tenant",
	"dissolution":    "divorce",
}
