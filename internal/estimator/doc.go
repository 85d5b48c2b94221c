// Package estimator holds the small regressors the data science pipelines
// train and evaluate.
//
// Every model follows the same Fit/Predict shape: fitting takes a table and
// the name of the label column, uses every other numeric column as a feature,
// and standardizes the features with statistics taken from the training rows.
// Missing feature values are imputed with the training mean. Linear algebra
// is delegated to gonum.
package estimator
