package pipeline

import (
	"goeda/internal/analysis"
	"goeda/internal/cleaner"
	"goeda/internal/report"
)

// Built-in profile names
const (
	ProfileAmazonSales  = "amazon-sales"
	ProfileEntertainer  = "entertainer"
	ProfileHeartDisease = "heart-disease"
)

// BuiltinProfiles returns the three bundled analyses
func BuiltinProfiles() []Profile {
	return []Profile{amazonSales(), entertainer(), heartDisease()}
}

func amazonSales() Profile {
	const revenue = "Total Revenue"
	return Profile{
		Name:        ProfileAmazonSales,
		Description: "Sales trends by month and year, key metrics and correlations",
		Sources: []Source{
			{Name: "amazon_sales", Path: "Amazon-Sales-data.csv", Output: "cleaned_amazon_sales_data.csv"},
		},
		Clean: cleaner.Config{
			RequiredColumns:    []string{revenue},
			NumericColumns:     []string{revenue},
			DateColumns:        []string{"Order Date"},
			DeriveCalendarFrom: "Order Date",
		},
		Analysis: AnalysisSpec{
			Describe:    true,
			Correlation: true,
			CorrelationChart: report.ChartSpec{
				Title: "Correlation Matrix", File: "correlation_matrix.png", Width: 12, Height: 8,
			},
			KeyMetric: revenue,
			Groupings: []Grouping{
				{
					By: "Month", Measure: revenue, Agg: string(analysis.AggSum), Chart: "line",
					ChartSpec: report.ChartSpec{Title: "Month-wise Sales Trend", XLabel: "Month", YLabel: revenue, File: "monthly_sales.png"},
				},
				{
					By: "Year", Measure: revenue, Agg: string(analysis.AggSum), Chart: "line",
					ChartSpec: report.ChartSpec{Title: "Year-wise Sales Trend", XLabel: "Year", YLabel: revenue, File: "yearly_sales.png"},
				},
				{
					By: "YearMonth", Measure: revenue, Agg: string(analysis.AggSum), Chart: "line",
					ChartSpec: report.ChartSpec{
						Title: "Yearly Month-wise Sales Trend", XLabel: "Year-Month", YLabel: revenue,
						File: "yearly_month_sales.png", Width: 14, Height: 8,
					},
				},
			},
			Workbook: "amazon_sales_report.xlsx",
		},
	}
}

func entertainer() Profile {
	return Profile{
		Name:        ProfileEntertainer,
		Description: "Merged entertainer records by country, age and revenue",
		Sources: []Source{
			{Name: "entertainer_basic_info", Path: "Entertainer_Basic_Info.xlsx", Output: "cleaned_entertainer_basic_info.csv"},
			{Name: "entertainer_breakthrough_info", Path: "Entertainer_Breakthrough_Info.xlsx", Output: "cleaned_entertainer_breakthrough_info.csv"},
			{Name: "entertainer_last_work_info", Path: "entertainer_Last_Work.xlsx", Output: "cleaned_entertainer_last_work_info.csv"},
		},
		Clean: cleaner.Config{
			NormalizeColumns:  cleaner.NormalizeLower,
			DateColumnPattern: "date",
		},
		Merge: MergeSpec{Output: "merged_entertainer_data.csv"},
		Analysis: AnalysisSpec{
			Describe: true,
			Counts: []Count{
				{
					Column: "country", Sort: "desc",
					ChartSpec: report.ChartSpec{
						Title: "Number of Entertainers by Country", XLabel: "Country",
						YLabel: "Number of Entertainers", File: "entertainers_by_country.png",
					},
				},
			},
			Histograms: []Histogram{
				{
					Column: "age", Bins: 20,
					ChartSpec: report.ChartSpec{
						Title: "Age Distribution of Entertainers", XLabel: "Age", YLabel: "Frequency",
						File: "age_distribution.png",
					},
				},
			},
			Groupings: []Grouping{
				{
					By: "country", Measure: "revenue", Agg: string(analysis.AggMean), Chart: "bar", Sort: "desc",
					ChartSpec: report.ChartSpec{
						Title: "Average Revenue per Country", XLabel: "Country", YLabel: "Average Revenue",
						File: "average_revenue_per_country.png",
					},
				},
			},
		},
		Synthetic: SyntheticSpec{
			Placeholders: []analysis.Placeholder{
				{Column: "country", Choices: []string{"USA", "UK", "Canada", "Australia"}},
				{Column: "age", Min: 20, Max: 80, Integer: true},
				{Column: "revenue", Min: 10000, Max: 1000000, Integer: true},
			},
		},
	}
}

func heartDisease() Profile {
	return Profile{
		Name:        ProfileHeartDisease,
		Description: "Heart disease distribution by age, gender and chest pain type",
		Sources: []Source{
			{Name: "heart_disease", Path: "Heart_Disease_data.csv", Output: "cleaned_heart_disease_data.csv"},
		},
		Analysis: AnalysisSpec{
			Describe:    true,
			Correlation: true,
			CorrelationChart: report.ChartSpec{
				Title: "Correlation Matrix", File: "correlation_matrix.png", Width: 12, Height: 8,
			},
			Counts: []Count{
				{
					Column: "target",
					ChartSpec: report.ChartSpec{
						Title: "Distribution of Heart Disease", XLabel: "Heart Disease (1 = Yes, 0 = No)",
						YLabel: "Count", File: "heart_disease_distribution.png", Width: 8, Height: 6,
					},
				},
				{
					Column: "sex", Hue: "target",
					ChartSpec: report.ChartSpec{
						Title: "Heart Disease by Gender", XLabel: "Gender (1 = Male, 0 = Female)",
						YLabel: "Count", File: "heart_disease_by_gender.png", Width: 8, Height: 6,
					},
				},
				{
					Column: "cp", Hue: "target",
					ChartSpec: report.ChartSpec{
						Title: "Heart Disease by Chest Pain Type", XLabel: "Chest Pain Type",
						YLabel: "Count", File: "heart_disease_by_chest_pain.png", Width: 8, Height: 6,
					},
				},
			},
			Histograms: []Histogram{
				{
					Column: "age", Bins: 20,
					ChartSpec: report.ChartSpec{
						Title: "Distribution of Age", XLabel: "Age", YLabel: "Frequency",
						File: "age_distribution.png", Width: 8, Height: 6,
					},
				},
			},
		},
	}
}
