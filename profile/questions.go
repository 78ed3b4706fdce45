package profile

import "yashubustudio/careermatch/careers"

// QuestionCount is the number of questions in the psychometric questionnaire.
const QuestionCount = 25

// questionWeights gives, per question, how strongly each trait is measured.
var questionWeights = [QuestionCount]map[careers.Trait]float64{
	{careers.TraitAnalytical: 0.7, careers.TraitLogical: 0.3},
	{careers.TraitAnalytical: 0.6, careers.TraitTechnical: 0.3, careers.TraitCreative: 0.1},
	{careers.TraitAnalytical: 0.6, careers.TraitTechnical: 0.3, careers.TraitLogical: 0.1},
	{careers.TraitAnalytical: 0.7, careers.TraitLogical: 0.3},
	{careers.TraitCreative: 0.8, careers.TraitPractical: 0.2},
	{careers.TraitCreative: 0.6, careers.TraitAnalytical: 0.2, careers.TraitSocial: 0.2},
	{careers.TraitCreative: 0.6, careers.TraitAnalytical: 0.2, careers.TraitPractical: 0.2},
	{careers.TraitCreative: 0.7, careers.TraitSocial: 0.3},
	{careers.TraitSocial: 0.8, careers.TraitLeadership: 0.2},
	{careers.TraitSocial: 0.7, careers.TraitPractical: 0.3},
	{careers.TraitSocial: 0.6, careers.TraitLeadership: 0.3, careers.TraitPractical: 0.1},
	{careers.TraitSocial: 0.6, careers.TraitAnalytical: 0.2, careers.TraitLeadership: 0.2},
	{careers.TraitLeadership: 0.6, careers.TraitSocial: 0.3, careers.TraitAnalytical: 0.1},
	{careers.TraitLeadership: 0.6, careers.TraitPractical: 0.3, careers.TraitSocial: 0.1},
	{careers.TraitLeadership: 0.6, careers.TraitAnalytical: 0.3, careers.TraitTechnical: 0.1},
	{careers.TraitTechnical: 0.7, careers.TraitAnalytical: 0.3},
	{careers.TraitTechnical: 0.6, careers.TraitPractical: 0.3, careers.TraitAnalytical: 0.1},
	{careers.TraitTechnical: 0.6, careers.TraitCreative: 0.2, careers.TraitAnalytical: 0.2},
	{careers.TraitTechnical: 0.7, careers.TraitLogical: 0.3},
	{careers.TraitPractical: 0.7, careers.TraitTechnical: 0.2, careers.TraitAnalytical: 0.1},
	{careers.TraitPractical: 0.6, careers.TraitAnalytical: 0.2, careers.TraitCreative: 0.2},
	{careers.TraitPractical: 0.6, careers.TraitTechnical: 0.2, careers.TraitSocial: 0.2},
	{careers.TraitPractical: 0.6, careers.TraitTechnical: 0.3, careers.TraitAnalytical: 0.1},
	{careers.TraitLogical: 0.7, careers.TraitAnalytical: 0.3},
	{careers.TraitLogical: 0.8, careers.TraitAnalytical: 0.2},
}
