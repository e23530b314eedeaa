package genai

import (
	"github.com/tmc/langchaingo/prompts"
)

const marketInfoTool = "getMarketInformation"

var pricePrompt = prompts.NewPromptTemplate(`You help farmers choose the best selling price for their produce.

Product name: {{.productName}}
Product description: {{.productDescription}}
Market trends reported by the farmer: {{.marketTrends}}
Logistics cost to the market: {{.logisticsCost}}
Distance to the market in km: {{.distanceToMarket}}

A photo of the product may be attached.
Call the getMarketInformation tool if current market data would help.
Answer with a JSON object: {"predictedPrice": <number>, "reasoning": "<short explanation>"}.`,
	[]string{"productName", "productDescription", "marketTrends", "logisticsCost", "distanceToMarket"},
)

var trendsPrompt = prompts.NewPromptTemplate(`You are an agricultural market analyst for Indian produce markets.

Simulate a realistic recent price history for {{.productName}} using these rules:
- Prices rise in off-seasons and fall during harvest seasons.
- Monsoons and other weather events can move prices sharply.
- Government policy and demand from large city markets also influence prices.

Write a trend summary of two or three sentences and give the average monthly price for the
last 6 to 8 months, oldest first, using labels such as "Jan 24".

Example for Tomatoes:
{"trendSummary": "Tomato prices have been volatile, peaking in the summer months on lower supply and stabilising after the monsoon. Expect stable prices for the next few weeks.",
 "priceHistory": [{"date": "Jan 24", "price": 30}, {"date": "Feb 24", "price": 35}, {"date": "Mar 24", "price": 45}, {"date": "Apr 24", "price": 55}, {"date": "May 24", "price": 70}, {"date": "Jun 24", "price": 60}]}

Answer for {{.productName}} with a JSON object of the same shape:
{"trendSummary": "<text>", "priceHistory": [{"date": "<month label>", "price": <number>}]}.`,
	[]string{"productName"},
)

var recommendPrompt = prompts.NewPromptTemplate(`You recommend products to a wholesale buyer.

Order history (JSON): {{.orderHistory}}
Available products (JSON): {{.productCatalog}}

Pick up to 5 available products the buyer is likely to want, considering what they bought
before and the product ratings. Only use productId values from the available products.
Answer with a JSON object: {"recommendations": [{"productId": "<id>", "reason": "<short reason>"}]}.`,
	[]string{"orderHistory", "productCatalog"},
)

var imagePrompt = prompts.NewPromptTemplate(`You illustrate produce listings for a farmers' marketplace.

Draw fresh {{.productName}} on a clean white background, in a bright and natural style that
reads like a product photo. Reply with one self-contained SVG document using viewBox="0 0 512 512":
shapes and gradients only, no text, no scripts, no external images or links.
Answer with the SVG markup only.`,
	[]string{"productName"},
)
