package extract

import "fmt"

// promptTemplate is the extraction contract with the model. The category
// enumeration and the rejection-sentinel instruction are load-bearing: the
// orchestrator trusts the model's own {"error": "Not a drone company"}
// convention as its first-pass filter, so the wording stays fixed.
const promptTemplate = `You are an AI that extracts structured company directory data EXCLUSIVELY for a drone industry database.

IMPORTANT: Only process companies that are DIRECTLY related to drones, UAVs, or aerial robotics.
This includes:
- Drone manufacturers and suppliers
- Drone service providers (aerial photography, surveying, delivery)
- Drone software and technology companies
- Drone training and certification centers
- Drone parts and accessories manufacturers
- Aerial robotics companies

DO NOT process companies from other industries like hotels, restaurants, retail, etc.

From the following webpage text, extract ONLY if it's a drone-related company:
- name
- website
- emails (list)
- phones (list)
- addresses (list)
- description (2-3 sentence summary of what the company does)
- category (MUST be one of: Drone Manufacturer, Drone Services, Drone Software, Drone Training, Drone Parts, Aerial Robotics, or similar drone-specific category)
- company_type (Manufacturer, Services, Software, Training, Parts, Robotics)
- region (India, USA, Europe, etc.)

If the company is NOT drone-related, return: {"error": "Not a drone company", "reason": "Company does not operate in the drone industry"}

Return JSON only. If any field is missing, return null.

Text:
%s`

// BuildPrompt embeds the acquired page text into the extraction prompt.
func BuildPrompt(rawText string) string {
	return fmt.Sprintf(promptTemplate, rawText)
}
